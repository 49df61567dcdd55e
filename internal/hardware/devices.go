package hardware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/oshokin/auto-watering/internal/logger"
)

// ErrHardwareFault marks failures of the bus, the converter or the relay pin.
var ErrHardwareFault = errors.New("hardware fault")

// errRelayPinNotFound is returned when periph does not know the pin name.
var errRelayPinNotFound = errors.New("relay pin not found")

const (
	// probeAttempts bounds retries of host init and the first sensor read.
	probeAttempts = 3
	// probeMaxElapsed caps the total time spent retrying at startup.
	probeMaxElapsed = 5 * time.Second
)

// Sensor produces raw readings on demand.
type Sensor interface {
	Read(ctx context.Context) (int, error)
}

// Relay is the digital output the pump hangs off.
// periph's gpio.PinIO satisfies it.
type Relay interface {
	Out(l gpio.Level) error
}

// Devices is the explicit set of hardware handles shared by the components.
type Devices struct {
	// Sensor is the soil probe channel.
	Sensor Sensor
	// Relay is the pump output. It is at its off level when Open returns.
	Relay Relay
	// OffLevel is the electrical level that keeps the pump stopped.
	OffLevel gpio.Level
	// closers release the underlying resources in reverse order.
	closers []func() error
}

// OffLevelFor returns the level that keeps a relay off.
func OffLevelFor(activeHigh bool) gpio.Level {
	if activeHigh {
		return gpio.Low
	}

	return gpio.High
}

// Open initialises periph, drives the relay to its off level before anything
// else, then opens the I2C bus and probes the converter. Every failure wraps
// ErrHardwareFault and releases what was already opened.
func Open(ctx context.Context, opts Options) (*Devices, error) {
	if err := retry(ctx, func() error {
		_, err := host.Init()
		return err
	}); err != nil {
		return nil, fmt.Errorf("%w: initialise host drivers: %w", ErrHardwareFault, err)
	}

	devices := &Devices{OffLevel: OffLevelFor(opts.RelayActiveHigh)}

	pin := gpioreg.ByName(opts.RelayPin)
	if pin == nil {
		return nil, fmt.Errorf("%w: %w: %q", ErrHardwareFault, errRelayPinNotFound, opts.RelayPin)
	}

	if err := pin.Out(devices.OffLevel); err != nil {
		return nil, fmt.Errorf("%w: drive relay %s off: %w", ErrHardwareFault, opts.RelayPin, err)
	}

	devices.Relay = pin
	devices.closers = append(devices.closers, pin.Halt)

	logger.InfoKV(ctx, "Relay initialised", "pin", pin.Name(), "off_level", devices.OffLevel.String())

	bus, err := i2creg.Open(opts.I2CBus)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("%w: open i2c bus %q: %w", ErrHardwareFault, opts.I2CBus, err),
			devices.Close(),
		)
	}

	devices.closers = append(devices.closers, bus.Close)

	adc := NewADS1115(bus, opts.ADCAddress, opts.ADCChannel, opts.ADCGain)

	var raw int
	if err = retry(ctx, func() error {
		raw, err = adc.Read(ctx)
		return err
	}); err != nil {
		return nil, errors.Join(fmt.Errorf("probe %s: %w", adc, err), devices.Close())
	}

	devices.Sensor = adc

	logger.InfoKV(ctx, "Sensor initialised", "device", adc.String(), "bus", bus.String(), "channel", opts.ADCChannel, "raw", raw)

	return devices, nil
}

// Close releases the relay pin and the bus. The relay keeps its last level.
func (d *Devices) Close() error {
	if d == nil {
		return nil
	}

	var errs []error

	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	d.closers = nil

	return errors.Join(errs...)
}

// retry runs op with a short exponential backoff bounded by probeAttempts.
// Context errors stop the retries at once.
func retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = probeMaxElapsed

	return backoff.Retry(func() error {
		err := op()
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		if err != nil {
			logger.WarnKV(ctx, "Hardware not ready, retrying", "error", err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, probeAttempts-1), ctx))
}
