package moisture

import "time"

const (
	// Dry is the percentage reported for fully dry soil.
	Dry = 0.0
	// Wet is the percentage reported for fully saturated soil.
	Wet = 100.0
)

// CalibrationPoints are raw sensor codes observed in fully dry and fully wet soil.
// Capacitive probes read higher when dry, so a usable calibration has DryRaw > WetRaw.
type CalibrationPoints struct {
	// DryRaw is the raw code measured with the probe in dry soil.
	DryRaw int `yaml:"dry_raw"`
	// WetRaw is the raw code measured with the probe in wet soil.
	WetRaw int `yaml:"wet_raw"`
}

// Valid reports whether the points describe a monotonic dry-to-wet mapping.
func (c CalibrationPoints) Valid() bool {
	return c.DryRaw > c.WetRaw
}

// Reading is one raw sample taken at a point in time.
type Reading struct {
	// Raw is the unscaled ADC code.
	Raw int
	// Timestamp is when the sample was taken.
	Timestamp time.Time
}

// Percent maps the reading through the calibration.
func (r Reading) Percent(calib CalibrationPoints) float64 {
	return Normalize(r.Raw, calib)
}

// Normalize converts a raw code to a moisture percentage in [0, 100].
// Codes at or above DryRaw are 0%, at or below WetRaw are 100%, and values in
// between are interpolated linearly. With a degenerate calibration
// (DryRaw <= WetRaw) the interval is empty, so every code hits one of the two
// endpoint branches.
func Normalize(raw int, calib CalibrationPoints) float64 {
	if raw >= calib.DryRaw {
		return Dry
	}

	if raw <= calib.WetRaw {
		return Wet
	}

	span := float64(calib.DryRaw - calib.WetRaw)
	if span <= 0 {
		return Dry
	}

	percent := float64(calib.DryRaw-raw) / span * 100

	return clamp(percent, Dry, Wet)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
