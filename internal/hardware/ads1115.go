package hardware

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// ADS1115 register pointers and config register fields.
const (
	regConversion = 0x00
	regConfig     = 0x01

	cfgStartSingle    = 0x8000 // OS: write 1 to start, reads 1 when idle
	cfgMuxSingleBase  = 0x4    // MUX 100..111 selects AINx against GND
	cfgMuxShift       = 12
	cfgGainShift      = 9
	cfgModeSingleShot = 0x0100
	cfgRate128SPS     = 0x0080
	cfgComparatorOff  = 0x0003
)

const (
	// conversionTime covers one sample at 128 SPS plus oscillator tolerance.
	conversionTime = 9 * time.Millisecond
	// maxReadyPolls bounds how long Read waits for the OS bit.
	maxReadyPolls = 4
)

// errConversionTimeout is returned when the converter never reports ready.
var errConversionTimeout = errors.New("conversion did not complete")

// ADS1115 reads one single-ended channel of a TI ADS1115 in single-shot mode.
type ADS1115 struct {
	// dev is the converter on its I2C address.
	dev i2c.Dev
	// config is the precomputed config word that starts a conversion.
	config uint16
	// settle is the wait between starting a conversion and polling it.
	settle time.Duration
}

// NewADS1115 binds a converter at addr on bus.
func NewADS1115(bus i2c.Bus, addr uint16, channel Channel, gain Gain) *ADS1115 {
	config := uint16(cfgStartSingle) |
		uint16(cfgMuxSingleBase+uint16(channel))<<cfgMuxShift |
		uint16(gain)<<cfgGainShift |
		cfgModeSingleShot |
		cfgRate128SPS |
		cfgComparatorOff

	return &ADS1115{
		dev:    i2c.Dev{Bus: bus, Addr: addr},
		config: config,
		settle: conversionTime,
	}
}

// Read triggers a conversion and returns the signed 16-bit result.
// I/O failures wrap ErrHardwareFault.
func (a *ADS1115) Read(ctx context.Context) (int, error) {
	start := []byte{regConfig, byte(a.config >> 8), byte(a.config)}
	if err := a.dev.Tx(start, nil); err != nil {
		return 0, fmt.Errorf("%w: start conversion: %w", ErrHardwareFault, err)
	}

	status := make([]byte, 2)

	for range maxReadyPolls {
		if err := sleep(ctx, a.settle); err != nil {
			return 0, err
		}

		if err := a.dev.Tx([]byte{regConfig}, status); err != nil {
			return 0, fmt.Errorf("%w: poll status: %w", ErrHardwareFault, err)
		}

		if binary.BigEndian.Uint16(status)&cfgStartSingle == 0 {
			continue
		}

		result := make([]byte, 2)
		if err := a.dev.Tx([]byte{regConversion}, result); err != nil {
			return 0, fmt.Errorf("%w: read conversion: %w", ErrHardwareFault, err)
		}

		return int(int16(binary.BigEndian.Uint16(result))), nil //nolint:gosec // Two's complement by datasheet.
	}

	return 0, fmt.Errorf("%w: %w", ErrHardwareFault, errConversionTimeout)
}

// String identifies the converter in logs.
func (a *ADS1115) String() string {
	return fmt.Sprintf("ads1115@%#x", a.dev.Addr)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
