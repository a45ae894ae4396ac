package config

import (
	"github.com/isaacphi/cmdstream/internal/appState"
	"github.com/isaacphi/cmdstream/internal/config"
	"github.com/spf13/cobra"
)

var (
	includeSources bool

	ConfigCmd = &cobra.Command{
		Use:   "config [prefix]",
		Short: "View configuration",
		Long:  "Read configuration. If prefix is included, only show configuration under that path. E.g. cmdstream config models.claude",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appState.Get().Config

			var prefix string
			if len(args) > 0 {
				prefix = args[0]
			}

			return cfg.PrintConfig(cmd.OutOrStdout(), includeSources, prefix)
		},
	}

	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of configuration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteJSONSchema(cmd.OutOrStdout())
		},
	}
)

func init() {
	ConfigCmd.Flags().BoolVarP(&includeSources, "include-sources", "s", false, "Show source file for each configuration value")
	ConfigCmd.AddCommand(schemaCmd)
}
