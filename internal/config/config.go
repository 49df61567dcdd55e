package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/auto-watering/internal/domain/moisture"
	"github.com/oshokin/auto-watering/internal/hardware"
	"github.com/oshokin/auto-watering/internal/logger"
)

// Config holds everything the controller needs for one process lifetime.
type Config struct {
	// Calibration holds the dry and wet raw codes of the probe.
	Calibration moisture.CalibrationPoints `yaml:"calibration"`
	// Control holds the decision and timing parameters of the loop.
	Control Control `yaml:"control"`
	// Hardware describes how the sensor and the relay are wired.
	Hardware Hardware `yaml:"hardware"`
	// LogLevel is the minimum level of diagnostic messages.
	LogLevel string `yaml:"log_level"`
}

// Control holds the decision and timing parameters.
type Control struct {
	// ThresholdPercent triggers watering when moisture falls below it.
	ThresholdPercent float64 `yaml:"threshold_percent"`
	// Actuation is how long the pump runs per trigger.
	Actuation time.Duration `yaml:"actuation"`
	// PollInterval is the pause between two sensor reads.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Hardware describes the relay pin and the ADC.
type Hardware struct {
	// RelayPin is the periph pin name driving the pump relay, e.g. GPIO17.
	RelayPin string `yaml:"relay_pin"`
	// RelayActiveHigh flips the relay logic for boards that switch on a high level.
	RelayActiveHigh bool `yaml:"relay_active_high"`
	// I2CBus is the periph bus name; empty selects the first available bus.
	I2CBus string `yaml:"i2c_bus"`
	// ADCAddress is the 7-bit I2C address of the ADS1115.
	ADCAddress uint16 `yaml:"adc_address"`
	// ADCChannel is the single-ended input the probe is wired to (0-3).
	ADCChannel int `yaml:"adc_channel"`
	// ADCGain is the programmable gain: 2/3, 1, 2, 4, 8 or 16.
	ADCGain string `yaml:"adc_gain"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "auto-watering.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultRelayPin is the BCM pin of the relay on the reference wiring.
	DefaultRelayPin = "GPIO17"

	// DefaultADCAddress is the ADS1115 address with ADDR tied to GND.
	DefaultADCAddress = 0x48
)

// ErrConfigExists is returned by WriteDefault when the file is already present.
var ErrConfigExists = errors.New("settings file already exists")

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errThresholdOutOfRange is returned when the threshold is outside [0, 100].
	errThresholdOutOfRange = errors.New("threshold_percent must be within [0, 100]")
	// errNegativeActuation is returned for a negative pump run time.
	errNegativeActuation = errors.New("actuation must not be negative")
	// errPollIntervalRequired is returned for a zero or negative poll interval.
	errPollIntervalRequired = errors.New("poll_interval must be positive")
	// errRelayPinRequired is returned when no relay pin is configured.
	errRelayPinRequired = errors.New("relay_pin must be provided")
	// errADCAddressRange is returned for an address outside the 7-bit space.
	errADCAddressRange = errors.New("adc_address must be a 7-bit I2C address")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log_level")
)

// Default returns the reference settings: a probe calibrated at 25000/15000,
// watering below 40% for three seconds, checking once a minute.
func Default() *Config {
	return &Config{
		Calibration: moisture.CalibrationPoints{
			DryRaw: 25000,
			WetRaw: 15000,
		},
		Control: Control{
			ThresholdPercent: 40,
			Actuation:        3 * time.Second,
			PollInterval:     time.Minute,
		},
		Hardware: Hardware{
			RelayPin:   DefaultRelayPin,
			ADCAddress: DefaultADCAddress,
			ADCChannel: 0,
			ADCGain:    "1",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the provided path and validates it.
// Keys absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// WriteDefault stores Default settings at path. An existing file is kept
// unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if !force {
		if _, err := os.Stat(filepath.Clean(path)); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat settings: %w", err)
		}
	}

	return Save(path, Default())
}

// Validate checks ranges and formats. A degenerate calibration passes; the
// normalizer still maps it to 0% or 100% and the controller warns about it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	threshold := cfg.Control.ThresholdPercent
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %v", errThresholdOutOfRange, cfg.Control.ThresholdPercent)
	}

	if cfg.Control.Actuation < 0 {
		return errNegativeActuation
	}

	if cfg.Control.PollInterval <= 0 {
		return errPollIntervalRequired
	}

	if strings.TrimSpace(cfg.Hardware.RelayPin) == "" {
		return errRelayPinRequired
	}

	if cfg.Hardware.ADCAddress == 0 || cfg.Hardware.ADCAddress > 0x7f {
		return fmt.Errorf("%w: got %#x", errADCAddressRange, cfg.Hardware.ADCAddress)
	}

	if _, err := hardware.ParseChannel(cfg.Hardware.ADCChannel); err != nil {
		return fmt.Errorf("invalid adc_channel: %w", err)
	}

	if _, err := hardware.ParseGain(cfg.Hardware.ADCGain); err != nil {
		return fmt.Errorf("invalid adc_gain: %w", err)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}

// SensorOptions converts the hardware section into driver options.
// It assumes cfg passed Validate.
func (h Hardware) SensorOptions() hardware.Options {
	channel, _ := hardware.ParseChannel(h.ADCChannel)
	gain, _ := hardware.ParseGain(h.ADCGain)

	return hardware.Options{
		RelayPin:        h.RelayPin,
		RelayActiveHigh: h.RelayActiveHigh,
		I2CBus:          h.I2CBus,
		ADCAddress:      h.ADCAddress,
		ADCChannel:      channel,
		ADCGain:         gain,
	}
}
