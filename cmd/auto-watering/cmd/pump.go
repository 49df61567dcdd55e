package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/auto-watering/internal/service/pumptest"
)

var (
	// pumpDuration overrides control.actuation for a manual run.
	pumpDuration time.Duration

	// pumpCmd runs the pump once.
	pumpCmd = &cobra.Command{
		Use:   "pump",
		Short: "Run the pump once to check the wiring.",
		Long: `Switches the pump relay on for the given duration, then off.

Defaults to control.actuation from the configuration file. Ctrl+C stops the
pump immediately.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return pumptest.Run(ctx, &pumptest.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				Duration:   pumpDuration,
				Simulate:   simulate,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	pumpCmd.Flags().DurationVarP(&pumpDuration, "duration", "d", 0, "how long to run the pump (default: control.actuation)")
}
