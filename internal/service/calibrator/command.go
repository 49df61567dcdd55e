package calibrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/oshokin/auto-watering/internal/config"
	"github.com/oshokin/auto-watering/internal/domain/moisture"
	"github.com/oshokin/auto-watering/internal/hardware"
	"github.com/oshokin/auto-watering/internal/logger"
	"github.com/oshokin/auto-watering/internal/report"
	"github.com/oshokin/auto-watering/internal/service/common"
)

// Point names the calibration point a run is written to.
type Point string

const (
	// PointNone prints the statistics only.
	PointNone Point = ""
	// PointDry stores the mean as calibration.dry_raw.
	PointDry Point = "dry"
	// PointWet stores the mean as calibration.wet_raw.
	PointWet Point = "wet"
)

const (
	// DefaultSamples is the number of reads per run.
	DefaultSamples = 10
	// DefaultInterval is the pause between two reads.
	DefaultInterval = time.Second
)

var (
	// ErrNoSamples is returned when every read failed.
	ErrNoSamples = errors.New("no successful readings")
	// errUnknownPoint is returned for a --save value other than dry or wet.
	errUnknownPoint = errors.New("calibration point must be dry or wet")
	// errSamplesRequired is returned for a non-positive sample count.
	errSamplesRequired = errors.New("samples must be positive")
)

// Options configures a calibration run.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// LogLevel overrides log_level from the file when set.
	LogLevel string

	// Samples is the number of reads.
	Samples int

	// Interval is the pause between reads.
	Interval time.Duration

	// Save writes the mean into the settings file when not PointNone.
	Save Point

	// Simulate reads the soil model instead of the ADC.
	Simulate bool

	// Output receives the report, os.Stdout when nil.
	Output io.Writer
}

// Stats summarises one sampling run.
type Stats struct {
	Count    int
	Failures int
	Min      int
	Max      int
	Mean     float64
}

// ParsePoint validates a --save value.
func ParsePoint(s string) (Point, error) {
	switch p := Point(s); p {
	case PointNone, PointDry, PointWet:
		return p, nil
	default:
		return PointNone, fmt.Errorf("%w: %q", errUnknownPoint, s)
	}
}

// Run samples the sensor and prints the statistics, optionally saving them.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "calibrate")

	if opts.Samples <= 0 {
		return errSamplesRequired
	}

	if _, err := ParsePoint(string(opts.Save)); err != nil {
		return err
	}

	cfg, err := common.LoadConfig(opts.ConfigPath, opts.LogLevel)
	if err != nil {
		return err
	}

	if !opts.Simulate {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
	}

	devices, err := common.OpenDevices(ctx, cfg, opts.Simulate)
	if err != nil {
		return common.IgnoreStop(ctx, err)
	}

	defer func() {
		if closeErr := devices.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to release devices", "error", closeErr)
		}
	}()

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	logger.Infof(ctx, "Sampling %d readings every %s", opts.Samples, opts.Interval)

	console := report.NewConsole(output)
	console.Printf("Sampling %d readings every %s...\n", opts.Samples, opts.Interval)

	stats, err := sample(ctx, devices.Sensor, opts.Samples, opts.Interval, func(i, raw int, readErr error) {
		if readErr != nil {
			console.Printf("  #%d: read failed: %v\n", i, readErr)
			return
		}

		console.Printf("  #%d: %d (%.1f%%)\n", i, raw, moisture.Normalize(raw, cfg.Calibration))
	})
	if err != nil {
		if ctx.Err() != nil {
			console.Printf("Interrupted, nothing saved.\n")
		}

		return common.IgnoreStop(ctx, err)
	}

	console.Printf("Samples: %d, failures: %d\n", stats.Count, stats.Failures)
	console.Printf("Min: %d, max: %d, mean: %.1f\n", stats.Min, stats.Max, stats.Mean)

	if opts.Save == PointNone {
		return nil
	}

	if err = apply(cfg, opts.Save, stats); err != nil {
		return err
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if err = config.Save(path, cfg); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Calibration saved", "point", string(opts.Save), "raw", int(math.Round(stats.Mean)), "path", path)
	console.Printf("Saved %s_raw = %d to %s\n", opts.Save, int(math.Round(stats.Mean)), path)

	if !cfg.Calibration.Valid() {
		console.Printf("Warning: dry_raw (%d) must be greater than wet_raw (%d).\n",
			cfg.Calibration.DryRaw, cfg.Calibration.WetRaw)
	}

	return nil
}

// sample reads n values, waiting interval between them. Failed reads are
// counted and skipped; a run without a single good read fails.
func sample(
	ctx context.Context,
	sensor hardware.Sensor,
	n int,
	interval time.Duration,
	observe func(i, raw int, err error),
) (Stats, error) {
	values := make([]int, 0, n)
	failures := 0

	for i := 1; i <= n; i++ {
		raw, err := sensor.Read(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Stats{}, ctxErr
		}

		observe(i, raw, err)

		if err != nil {
			failures++
		} else {
			values = append(values, raw)
		}

		if i < n {
			if err = wait(ctx, interval); err != nil {
				return Stats{}, err
			}
		}
	}

	stats, err := summarize(values)
	stats.Failures = failures

	return stats, err
}

// summarize computes min, max and mean of the readings.
func summarize(values []int) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrNoSamples
	}

	stats := Stats{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}

	var sum float64

	for _, v := range values {
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
		sum += float64(v)
	}

	stats.Mean = sum / float64(len(values))

	return stats, nil
}

// apply stores the rounded mean as the requested calibration point.
func apply(cfg *config.Config, point Point, stats Stats) error {
	raw := int(math.Round(stats.Mean))

	switch point {
	case PointDry:
		cfg.Calibration.DryRaw = raw
	case PointWet:
		cfg.Calibration.WetRaw = raw
	default:
		return fmt.Errorf("%w: %q", errUnknownPoint, point)
	}

	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
