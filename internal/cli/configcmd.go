package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"headerflow/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			dump, err := cfg.Dump()
			if err != nil {
				return err
			}
			if path, err := config.UserConfigPath(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "# user config file: %s\n", path)
			}
			fmt.Fprint(cmd.OutOrStdout(), dump)
			return nil
		},
	}
	return cmd
}
