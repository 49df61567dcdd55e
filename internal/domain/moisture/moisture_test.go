package moisture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sampleCalibration matches the factory values of the capacitive probe.
var sampleCalibration = CalibrationPoints{DryRaw: 25000, WetRaw: 15000}

// TestNormalize_Endpoints checks that readings beyond the calibration points clamp to 0% and 100%.
func TestNormalize_Endpoints(t *testing.T) {
	t.Parallel()

	for _, raw := range []int{25000, 25001, 30000, 65535} {
		require.InDelta(t, 0.0, Normalize(raw, sampleCalibration), 0, "raw %d", raw)
	}

	for _, raw := range []int{15000, 14999, 0, -120} {
		require.InDelta(t, 100.0, Normalize(raw, sampleCalibration), 0, "raw %d", raw)
	}
}

// TestNormalize_Midpoint checks the halfway value between the calibration points.
func TestNormalize_Midpoint(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 50.0, Normalize(20000, sampleCalibration), 1e-9)
	require.InDelta(t, 35.2, Normalize(21480, sampleCalibration), 1e-9)
}

// TestNormalize_Monotonic walks the open interval and asserts the percentage never rises with the raw code.
func TestNormalize_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Normalize(sampleCalibration.WetRaw+1, sampleCalibration)
	for raw := sampleCalibration.WetRaw + 1; raw < sampleCalibration.DryRaw; raw += 7 {
		got := Normalize(raw, sampleCalibration)

		require.Greater(t, got, 0.0)
		require.Less(t, got, 100.0)
		require.LessOrEqual(t, got, prev)

		prev = got
	}
}

// TestNormalize_DegenerateCalibration ensures equal or inverted points still follow
// the endpoint rules: at or above DryRaw is 0%, below it is 100%.
func TestNormalize_DegenerateCalibration(t *testing.T) {
	t.Parallel()

	equal := CalibrationPoints{DryRaw: 20000, WetRaw: 20000}
	require.False(t, equal.Valid())

	for _, raw := range []int{20000, 20001, 65535} {
		require.InDelta(t, Dry, Normalize(raw, equal), 0, "raw %d", raw)
	}

	for _, raw := range []int{19999, 0, -5} {
		require.InDelta(t, Wet, Normalize(raw, equal), 0, "raw %d", raw)
	}

	inverted := CalibrationPoints{DryRaw: 15000, WetRaw: 25000}
	require.False(t, inverted.Valid())
	require.InDelta(t, Dry, Normalize(20000, inverted), 0)
	require.InDelta(t, Dry, Normalize(15000, inverted), 0)
	require.InDelta(t, Wet, Normalize(10000, inverted), 0)
}

// TestNormalize_WetSideAlwaysFull checks every code at or below WetRaw maps to 100%
// for valid and degenerate calibrations alike.
func TestNormalize_WetSideAlwaysFull(t *testing.T) {
	t.Parallel()

	calibrations := []CalibrationPoints{
		sampleCalibration,
		{DryRaw: 20000, WetRaw: 20000},
		{DryRaw: 20000, WetRaw: 20001},
	}

	for _, calib := range calibrations {
		for _, raw := range []int{calib.WetRaw - 1000, calib.WetRaw - 1} {
			require.InDelta(t, Wet, Normalize(raw, calib), 0, "raw %d, calibration %+v", raw, calib)
		}
	}
}

// TestReading_Percent verifies Reading delegates to Normalize.
func TestReading_Percent(t *testing.T) {
	t.Parallel()

	r := Reading{Raw: 20000, Timestamp: time.Now()}
	require.InDelta(t, 50.0, r.Percent(sampleCalibration), 1e-9)
}
