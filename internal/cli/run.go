package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"headerflow/internal/core"
	"headerflow/internal/httpx"
	"headerflow/internal/ratelimit"
	"headerflow/internal/sequence"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		save   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a step sequence defined in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			steps, err := sequence.LoadFile(args[0])
			if err != nil {
				return err
			}

			opts := []sequence.ExecutorOption{
				sequence.WithBackoff(cfg.RetryBackoff),
				sequence.WithHeaderDefaults(cfg.UserAgent(), cfg.Accept()),
			}
			if root.verbose {
				opts = append(opts, sequence.WithDebug(httpx.NewDebugLogger(cmd.ErrOrStderr())))
			}
			if cfg.RequestsPerSecond > 0 {
				opts = append(opts, sequence.WithLimiter(ratelimit.New(cfg.RequestsPerSecond)))
			}

			exec := sequence.NewExecutor(httpx.NewClient(cfg.DefaultTimeout), opts...)
			seq := sequence.New(exec)
			for _, step := range steps {
				seq.AddStep(step)
			}

			results := seq.Execute(cmd.Context())
			printRunSummary(cmd.OutOrStdout(), seq.Order(), results)

			if save {
				store, err := newStore(cfg)
				if err != nil {
					return err
				}
				path, err := store.SaveResults(seq.Order(), results, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", path)
			}

			for _, r := range results {
				if !r.Success {
					return fmt.Errorf("sequence finished with failures")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "write the step results to the output directory")
	cmd.Flags().StringVarP(&output, "output", "o", "", "filename for --save (default: headers_<timestamp>.json)")
	return cmd
}

func printRunSummary(w io.Writer, order []string, results map[string]*core.StepResult) {
	for _, name := range order {
		r := results[name]
		if r == nil {
			continue
		}
		switch {
		case !r.Success:
			errColor.Fprintf(w, "FAIL  %-20s %s\n", name, r.Error)
		case r.Response == nil:
			okColor.Fprintf(w, "SKIP  %-20s condition not met\n", name)
		default:
			okColor.Fprintf(w, "OK    %-20s %d in %s\n", name, r.Response.StatusCode, r.ExecutionTime.Round(time.Millisecond))
		}
	}

	extracted := make([]string, 0)
	for name, r := range results {
		if r.Success && len(r.Data) > 0 {
			extracted = append(extracted, name)
		}
	}
	if len(extracted) == 0 {
		return
	}
	sort.Strings(extracted)
	fmt.Fprintln(w, "extracted values:")
	for _, name := range extracted {
		keys := make([]string, 0, len(results[name].Data))
		for key := range results[name].Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			keyColor.Fprintf(w, "  %s.%s", name, key)
			fmt.Fprintf(w, " = %s\n", core.Stringify(results[name].Data[key]))
		}
	}
}
