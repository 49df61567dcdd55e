package pumptest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/auto-watering/internal/hardware"
	"github.com/oshokin/auto-watering/internal/logger"
	"github.com/oshokin/auto-watering/internal/pump"
	"github.com/oshokin/auto-watering/internal/report"
	"github.com/oshokin/auto-watering/internal/service/common"
)

// Options configures a manual pump run.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// LogLevel overrides log_level from the file when set.
	LogLevel string

	// Duration of the run; control.actuation from the file when zero.
	Duration time.Duration

	// Simulate drives the simulated relay instead of the GPIO pin.
	Simulate bool

	// Output receives the status lines, os.Stdout when nil.
	Output io.Writer
}

// Run switches the pump on for the requested time. Interrupting it stops the
// pump early and is not an error.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pump")

	if opts.Duration < 0 {
		return fmt.Errorf("%w: %s", pump.ErrInvalidDuration, opts.Duration)
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

	duration := opts.Duration
	if duration == 0 {
		duration = cfg.Control.Actuation
	}

	devices, err := common.OpenDevices(ctx, cfg, opts.Simulate)
	if err != nil {
		return common.IgnoreStop(ctx, err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	return runOnce(ctx, devices, duration, report.NewConsole(output))
}

// runOnce owns devices: the relay is off and released on return.
func runOnce(
	ctx context.Context,
	devices *hardware.Devices,
	duration time.Duration,
	console *report.Console,
) (err error) {
	p, err := pump.New(devices.Relay, pump.WithOffLevel(devices.OffLevel))
	if err != nil {
		return errors.Join(fmt.Errorf("%w: %w", hardware.ErrHardwareFault, err), devices.Close())
	}

	defer func() {
		err = errors.Join(err, p.Deactivate(), devices.Close())
	}()

	console.PumpOn(duration)
	logger.InfoKV(ctx, "Manual pump run", "duration", duration.String())

	err = p.Activate(ctx, duration)

	switch {
	case err == nil:
		console.PumpOff()
		return nil
	case ctx.Err() != nil:
		console.Printf("[PUMP] Interrupted, pump off.\n")
		return nil
	default:
		return fmt.Errorf("activate pump: %w", err)
	}
}
