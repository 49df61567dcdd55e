//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/auto-watering/internal/config"
	"github.com/oshokin/auto-watering/internal/hardware"
	"github.com/oshokin/auto-watering/internal/logger"
)

// errUnknownLogLevel is returned for a --log-level value zap does not know.
var errUnknownLogLevel = errors.New("unknown log level")

// LoadConfig reads the settings file and applies its log level.
// A non-empty levelOverride wins over the file.
func LoadConfig(path, levelOverride string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	name := cfg.LogLevel
	if levelOverride != "" {
		name = levelOverride
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, name)
	}

	logger.SetLevel(level)

	return cfg, nil
}

// IgnoreStop returns nil when err only reports that ctx was canceled by the
// operator, so an interrupted startup exits cleanly.
func IgnoreStop(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		logger.InfoKV(ctx, "Stopped by operator during startup", "error", err)

		return nil
	}

	return err
}

// OpenDevices acquires the real hardware or, when simulate is set, a soil
// model driven by the configured calibration.
func OpenDevices(ctx context.Context, cfg *config.Config, simulate bool) (*hardware.Devices, error) {
	if simulate {
		logger.Info(ctx, "Using simulated sensor and relay")

		return hardware.Simulate(cfg.Calibration, cfg.Hardware.RelayActiveHigh), nil
	}

	return hardware.Open(ctx, cfg.Hardware.SensorOptions())
}
