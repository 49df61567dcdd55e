package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/auto-watering/internal/service/calibrator"
)

var (
	// calibrateSamples is the number of reads per calibration run.
	calibrateSamples int
	// calibrateInterval is the pause between reads.
	calibrateInterval time.Duration
	// calibrateSave selects the calibration point to write.
	calibrateSave string

	// calibrateCmd samples the probe to find dry_raw and wet_raw.
	calibrateCmd = &cobra.Command{
		Use:   "calibrate",
		Short: "Sample the probe to find the dry and wet raw values.",
		Long: `Reads the soil probe several times and prints min, max and mean raw codes.

Hold the probe in air or dry soil and run with --save dry, then put it in a
glass of water and run with --save wet. Without --save nothing is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			point, err := calibrator.ParsePoint(calibrateSave)
			if err != nil {
				return err
			}

			ctx, stop := notifyContext()
			defer stop()

			return calibrator.Run(ctx, &calibrator.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				Samples:    calibrateSamples,
				Interval:   calibrateInterval,
				Save:       point,
				Simulate:   simulate,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	calibrateCmd.Flags().IntVarP(&calibrateSamples, "samples", "n", calibrator.DefaultSamples, "number of readings")
	calibrateCmd.Flags().DurationVar(&calibrateInterval, "interval", calibrator.DefaultInterval, "pause between readings")
	calibrateCmd.Flags().StringVar(&calibrateSave, "save", "", "store the mean as the dry or wet point")
}
