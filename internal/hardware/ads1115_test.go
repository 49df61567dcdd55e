package hardware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// newTestADC binds a converter to a recorded bus and skips the settle delay.
func newTestADC(bus *i2ctest.Playback, channel Channel, gain Gain) *ADS1115 {
	adc := NewADS1115(bus, 0x48, channel, gain)
	adc.settle = 0

	return adc
}

// TestADS1115_Read replays a single-shot conversion on AIN0 at gain 1.
func TestADS1115_Read(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		DontPanic: true,
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x01, 0xc3, 0x83}},
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0x03, 0x83}}, // still converting
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0x83, 0x83}},
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0x53, 0xe8}},
		},
	}

	raw, err := newTestADC(bus, 0, Gain1).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 21480, raw)
	require.NoError(t, bus.Close())
}

// TestADS1115_ReadNegative checks two's complement decoding of codes below ground.
func TestADS1115_ReadNegative(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		DontPanic: true,
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x01, 0xf1, 0x83}},
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0xf1, 0x83}},
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0xff, 0x38}},
		},
	}

	raw, err := newTestADC(bus, 3, Gain2_3).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, -200, raw)
}

// TestADS1115_ConversionTimeout expects a hardware fault when the OS bit never sets.
func TestADS1115_ConversionTimeout(t *testing.T) {
	t.Parallel()

	ops := []i2ctest.IO{{Addr: 0x48, W: []byte{0x01, 0xc3, 0x83}}}
	for range maxReadyPolls {
		ops = append(ops, i2ctest.IO{Addr: 0x48, W: []byte{0x01}, R: []byte{0x03, 0x83}})
	}

	bus := &i2ctest.Playback{DontPanic: true, Ops: ops}

	_, err := newTestADC(bus, 0, Gain1).Read(context.Background())
	require.ErrorIs(t, err, ErrHardwareFault)
	require.ErrorIs(t, err, errConversionTimeout)
}

// TestADS1115_BusError wraps bus failures as hardware faults.
func TestADS1115_BusError(t *testing.T) {
	t.Parallel()

	// No recorded operations: the first write fails.
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := newTestADC(bus, 0, Gain1).Read(context.Background())
	require.ErrorIs(t, err, ErrHardwareFault)
}

// TestADS1115_Canceled stops waiting for the conversion once the context is done.
func TestADS1115_Canceled(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		DontPanic: true,
		Ops:       []i2ctest.IO{{Addr: 0x48, W: []byte{0x01, 0xc3, 0x83}}},
	}

	adc := NewADS1115(bus, 0x48, 0, Gain1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adc.Read(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
