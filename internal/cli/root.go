// Package cli wires the headerflow commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"headerflow/internal/config"
	"headerflow/internal/runstore"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions carry the persistent flags shared by subcommands.
type rootOptions struct {
	configPath string
	timeout    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "headerflow",
		Short:        "Inspect the HTTP headers exchanged with web servers",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default: user config, then packaged defaults)")
	cmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "", "per-request timeout, e.g. 30s (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and responses")

	cmd.AddCommand(
		newCaptureCmd(opts),
		newRunCmd(opts),
		newConfigCmd(opts),
		newServeCmd(),
	)
	return cmd
}

// loadConfig resolves the effective configuration for a command invocation.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadUser()
	}

	if o.timeout != "" {
		d, err := time.ParseDuration(o.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", o.timeout, err)
		}
		cfg.DefaultTimeout = d
	}
	return cfg, nil
}

// newStore builds the results store, honoring auto_create_output_dir.
func newStore(cfg *config.Config) (*runstore.Store, error) {
	if !cfg.AutoCreateOutputDir {
		if _, err := os.Stat(cfg.OutputDir); err != nil {
			return nil, fmt.Errorf("output directory %s is not usable and auto_create_output_dir is off: %w", cfg.OutputDir, err)
		}
	}
	return runstore.New(cfg.OutputDir), nil
}
