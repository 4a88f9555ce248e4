package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"headerflow/internal/testserver"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "testserver",
		Short: "Run a local httpbin-style server for trying out sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := &http.Server{
				Addr:    addr,
				Handler: testserver.NewServer().Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "listening on http://%s\n", addr)
			fmt.Fprintln(out, "endpoints:")
			fmt.Fprintln(out, "  GET  /health           - health check")
			fmt.Fprintln(out, "  GET  /get              - echo query args, headers, origin")
			fmt.Fprintln(out, "  POST /post             - echo request body")
			fmt.Fprintln(out, "  GET  /headers          - echo request headers as JSON")
			fmt.Fprintln(out, "  GET  /user-agent       - echo the User-Agent header")
			fmt.Fprintln(out, "  GET  /status/{code}    - return a specific status code")
			fmt.Fprintln(out, "  GET  /delay/{duration} - delay the response")

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to listen on")
	return cmd
}
