package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/auto-watering/internal/config"
	"github.com/oshokin/auto-watering/internal/hardware"
	"github.com/oshokin/auto-watering/internal/logger"
	"github.com/oshokin/auto-watering/internal/pump"
	"github.com/oshokin/auto-watering/internal/report"
	"github.com/oshokin/auto-watering/internal/service/common"
	"github.com/oshokin/auto-watering/internal/version"
)

// Options configures a controller run.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// LogLevel overrides log_level from the file when set.
	LogLevel string

	// Simulate replaces the sensor and the relay with a soil model.
	Simulate bool

	// Output receives the status lines, os.Stdout when nil.
	Output io.Writer
}

// Run loads the settings, acquires the devices and waters until ctx is done.
// The relay is forced off before Run returns whenever it was initialised.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "auto-watering")

	cfg, err := common.LoadConfig(opts.ConfigPath, opts.LogLevel)
	if err != nil {
		return err
	}

	// Two controllers on one relay would fight over it.
	if !opts.Simulate {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
	}

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		ctx = logger.WithKV(ctx, "actor", actor)
	}

	logger.InfoKV(ctx, "Starting controller", "version", version.Full(), "simulate", opts.Simulate)

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	console := report.NewConsole(output)
	console.Starting()

	devices, err := common.OpenDevices(ctx, cfg, opts.Simulate)
	if err != nil {
		if err = common.IgnoreStop(ctx, err); err != nil {
			logger.ErrorKV(ctx, "Hardware initialisation failed", "error", err)
		}

		return err
	}

	return execute(ctx, cfg, devices, console)
}

// execute owns devices from here on: it builds the pump and runs the loop,
// and its teardown stops the pump and releases devices on every return path.
func execute(ctx context.Context, cfg *config.Config, devices *hardware.Devices, console *report.Console) (err error) {
	p, err := pump.New(devices.Relay, pump.WithOffLevel(devices.OffLevel))
	if err != nil {
		return errors.Join(fmt.Errorf("%w: %w", hardware.ErrHardwareFault, err), devices.Close())
	}

	defer func() {
		console.CleaningUp()

		teardownErr := errors.Join(p.Deactivate(), devices.Close())
		if teardownErr != nil {
			logger.ErrorKV(ctx, "Teardown failed", "error", teardownErr)
		} else {
			console.Released()
		}

		logger.InfoKV(ctx, "Controller stopped", "pump", p.State().String())

		err = errors.Join(err, teardownErr)
	}()

	if !cfg.Calibration.Valid() {
		logger.WarnKV(
			ctx,
			"Calibration is degenerate, readings map to either 0% or 100%",
			"dry_raw", cfg.Calibration.DryRaw,
			"wet_raw", cfg.Calibration.WetRaw,
		)
	}

	console.Ready(cfg.Control.ThresholdPercent, cfg.Control.Actuation)

	loop := NewLoop(devices.Sensor, p, console, Settings{
		Calibration:      cfg.Calibration,
		ThresholdPercent: cfg.Control.ThresholdPercent,
		Actuation:        cfg.Control.Actuation,
		PollInterval:     cfg.Control.PollInterval,
	})

	if err = loop.Run(ctx); err != nil {
		return err
	}

	console.Stopped()

	return nil
}
