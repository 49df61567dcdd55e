package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/auto-watering/internal/domain/moisture"
)

// TestConsole_PollBlock renders a full watering cycle.
func TestConsole_PollBlock(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := NewConsole(&buf)
	at := time.Date(2026, 5, 1, 7, 30, 5, 0, time.Local)

	c.Observation(moisture.Reading{Raw: 21480, Timestamp: at}, 35.2)
	c.BelowThreshold(40)
	c.PumpOn(3 * time.Second)
	c.PumpOff()
	c.NextCheck(time.Minute)

	want := strings.Join([]string{
		"[07:30:05] Moisture: 35.2% | Raw: 21480",
		"  -> Moisture below threshold (40%), starting watering...",
		"[PUMP] Pump on for 3s...",
		"[PUMP] Pump off.",
		"  -> Next check in 1m0s.",
		strings.Repeat("-", separatorWidth),
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

// TestConsole_OneDecimal rounds the percentage to one decimal place.
func TestConsole_OneDecimal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	NewConsole(&buf).Observation(moisture.Reading{Raw: 20001, Timestamp: time.Now()}, 49.99)
	require.Contains(t, buf.String(), "Moisture: 50.0% | Raw: 20001")
}

// TestConsole_Lifecycle covers banner, skip and shutdown lines.
func TestConsole_Lifecycle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := NewConsole(&buf)
	c.Starting()
	c.Ready(40, 3*time.Second)
	c.ReadFailed(time.Now(), errors.New("bus busy"))
	c.MoistureOK()
	c.Stopped()
	c.CleaningUp()
	c.Released()

	out := buf.String()
	require.Contains(t, out, "Configuration: threshold 40%, pump time 3s")
	require.Contains(t, out, "Sensor read failed, skipping this check: bus busy")
	require.Contains(t, out, "Moisture OK, no watering needed.")
	require.Contains(t, out, "Stopped by operator.")
	require.True(t, strings.HasSuffix(out, "Shutdown complete. All resources released.\n"))
}
