package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/auto-watering/internal/config"
)

var (
	// forceInit overwrites an existing configuration file.
	forceInit bool

	// configCmd groups configuration helpers.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
	}

	// configInitCmd writes the default configuration.
	configInitCmd = &cobra.Command{
		Use:           "init",
		Short:         "Write a configuration file with default settings.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteDefault(configPath, forceInit); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
}
