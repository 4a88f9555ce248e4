package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"headerflow/internal/extractor"
	"headerflow/internal/httpx"
)

func newCaptureCmd(root *rootOptions) *cobra.Command {
	var (
		comprehensive bool
		prepareOnly   bool
		save          bool
		format        string
		output        string
		headers       []string
	)

	cmd := &cobra.Command{
		Use:   "capture URL [URL...]",
		Short: "Fetch one or more URLs and report the headers exchanged",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "inline" {
				return fmt.Errorf("unknown format %q (want json or inline)", format)
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			custom, err := parseHeaderFlags(headers)
			if err != nil {
				return err
			}

			ext := extractor.New(httpx.NewClient(cfg.DefaultTimeout), cfg)
			opts := extractor.Options{Custom: custom, Comprehensive: comprehensive}

			captures := make([]extractor.Capture, 0, len(args))
			for _, rawURL := range args {
				var c extractor.Capture
				if prepareOnly {
					c = ext.Prepare(rawURL, opts)
				} else {
					c = ext.Do(cmd.Context(), rawURL, opts)
				}
				captures = append(captures, c)
			}

			if err := printCaptures(cmd.OutOrStdout(), captures, format); err != nil {
				return err
			}

			if save {
				store, err := newStore(cfg)
				if err != nil {
					return err
				}
				path, err := store.Save(captures, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&comprehensive, "comprehensive", false, "send the full browser-imitating header set")
	cmd.Flags().BoolVar(&prepareOnly, "prepare-only", false, "show the headers that would be sent without making requests")
	cmd.Flags().BoolVar(&save, "save", false, "write the captures to the output directory")
	cmd.Flags().StringVar(&format, "format", "inline", "output format: json or inline")
	cmd.Flags().StringVarP(&output, "output", "o", "", "filename for --save (default: headers_<timestamp>.json)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "custom header as Name:Value (repeatable, overrides defaults)")
	return cmd
}

// parseHeaderFlags turns repeated -H "Name: Value" flags into a header map.
func parseHeaderFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q (want Name:Value)", p)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return out, nil
}
