package hardware

import (
	"errors"
	"fmt"
	"strings"
)

// Channel is a single-ended ADS1115 input (AIN0..AIN3 against GND).
type Channel uint8

// Gain is the programmable gain amplifier setting of the ADS1115.
// The values are the PGA bit patterns of the config register.
type Gain uint16

const (
	// Gain2_3 selects the +-6.144 V range.
	Gain2_3 Gain = iota
	// Gain1 selects the +-4.096 V range.
	Gain1
	// Gain2 selects the +-2.048 V range.
	Gain2
	// Gain4 selects the +-1.024 V range.
	Gain4
	// Gain8 selects the +-0.512 V range.
	Gain8
	// Gain16 selects the +-0.256 V range.
	Gain16
)

// channelCount is the number of single-ended inputs of the ADS1115.
const channelCount = 4

var (
	// errUnknownGain is returned by ParseGain for unsupported values.
	errUnknownGain = errors.New("gain must be one of 2/3, 1, 2, 4, 8, 16")
	// errUnknownChannel is returned by ParseChannel for inputs outside 0-3.
	errUnknownChannel = errors.New("channel must be within 0-3")
)

// gainNames maps config spellings onto PGA settings.
//
//nolint:gochecknoglobals // Read-only lookup table.
var gainNames = map[string]Gain{
	"2/3": Gain2_3,
	"1":   Gain1,
	"2":   Gain2,
	"4":   Gain4,
	"8":   Gain8,
	"16":  Gain16,
}

// ParseGain converts a config value such as "2/3" or "4" into a Gain.
// An empty string selects Gain1.
func ParseGain(s string) (Gain, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Gain1, nil
	}

	g, ok := gainNames[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errUnknownGain, s)
	}

	return g, nil
}

// ParseChannel validates a single-ended input number.
func ParseChannel(n int) (Channel, error) {
	if n < 0 || n >= channelCount {
		return 0, fmt.Errorf("%w: %d", errUnknownChannel, n)
	}

	return Channel(n), nil
}

// Options describes how the relay and the ADC are wired.
type Options struct {
	// RelayPin is the periph pin name, e.g. GPIO17.
	RelayPin string
	// RelayActiveHigh is set for relay boards that switch on a high level.
	RelayActiveHigh bool
	// I2CBus is the periph bus name; empty opens the first bus.
	I2CBus string
	// ADCAddress is the 7-bit ADS1115 address.
	ADCAddress uint16
	// ADCChannel is the input the probe is wired to.
	ADCChannel Channel
	// ADCGain is the PGA range.
	ADCGain Gain
}
