package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/auto-watering/internal/config"
	"github.com/oshokin/auto-watering/internal/logger"
	"github.com/oshokin/auto-watering/internal/service/controller"
	"github.com/oshokin/auto-watering/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides log_level from the configuration file.
	logLevel string
	// simulate replaces the ADC and the relay with a soil model.
	simulate bool

	// rootCmd represents the base command running the watering loop.
	rootCmd = &cobra.Command{
		Use:   "auto-watering",
		Short: "Water a plant when the soil gets dry.",
		Long: `Closed-loop irrigation controller for a Raspberry Pi.

Reads a capacitive soil moisture probe through an ADS1115 converter, maps the raw
code to a 0-100% scale using the dry and wet calibration points, and runs the
pump relay for a fixed time whenever moisture drops below the threshold.
The pump is always switched off on exit, including Ctrl+C during watering.

Use --simulate to run without hardware against a simple soil model.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext()
			defer stop()

			return controller.Run(ctx, &controller.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				Simulate:   simulate,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
)

// Execute runs the auto-watering CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// An interrupt that surfaces as an error is still an operator stop.
	if err := rootCmd.Execute(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf(context.Background(), "%v", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Sync()
}

// notifyContext is canceled on SIGINT or SIGTERM.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn or error")
	flags.BoolVar(&simulate, "simulate", false, "use a simulated sensor and relay instead of the hardware")

	rootCmd.AddCommand(calibrateCmd, pumpCmd, configCmd)
}
