package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"headerflow/internal/extractor"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	keyColor     = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed)
)

func printCaptures(w io.Writer, captures []extractor.Capture, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(captures)
	}
	for i, c := range captures {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printCaptureInline(w, c)
	}
	return nil
}

func printCaptureInline(w io.Writer, c extractor.Capture) {
	headingColor.Fprintln(w, c.URL)

	switch c.Status {
	case "error":
		errColor.Fprintf(w, "  error: %s\n", c.Error)
	case "prepared":
		okColor.Fprintln(w, "  prepared (not sent)")
	default:
		if c.StatusCode >= 200 && c.StatusCode < 300 {
			okColor.Fprintf(w, "  status: %d\n", c.StatusCode)
		} else {
			errColor.Fprintf(w, "  status: %d\n", c.StatusCode)
		}
	}

	printHeaderMap(w, "request headers sent", c.RequestHeaders)
	printHeaderMap(w, "response headers received", c.ResponseHeaders)
}

func printHeaderMap(w io.Writer, title string, headers map[string]string) {
	if len(headers) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		keyColor.Fprintf(w, "    %s", name)
		fmt.Fprintf(w, ": %s\n", headers[name])
	}
}
