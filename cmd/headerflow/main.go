// Command headerflow captures HTTP headers and runs step sequences.
package main

import "headerflow/internal/cli"

func main() {
	cli.Execute()
}
