package calibrator

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/auto-watering/internal/config"
)

var errTestRead = errors.New("test read error")

// sequenceSensor returns the queued results in order.
type sequenceSensor struct {
	values []int
	errs   []error
	calls  int
}

func (s *sequenceSensor) Read(_ context.Context) (int, error) {
	i := s.calls
	s.calls++

	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}

	return s.values[i], nil
}

// TestSummarize computes min, max and mean.
func TestSummarize(t *testing.T) {
	t.Parallel()

	stats, err := summarize([]int{25010, 24990, 25030, 24970})
	require.NoError(t, err)
	require.Equal(t, 4, stats.Count)
	require.Equal(t, 24970, stats.Min)
	require.Equal(t, 25030, stats.Max)
	require.InDelta(t, 25000.0, stats.Mean, 1e-9)

	_, err = summarize(nil)
	require.ErrorIs(t, err, ErrNoSamples)
}

// TestSample_SkipsFailures counts failed reads without aborting.
func TestSample_SkipsFailures(t *testing.T) {
	t.Parallel()

	sensor := &sequenceSensor{
		values: []int{15100, 0, 14900},
		errs:   []error{nil, errTestRead, nil},
	}

	var observed []int

	stats, err := sample(context.Background(), sensor, 3, 0, func(i, _ int, _ error) {
		observed = append(observed, i)
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, observed)
	require.Equal(t, 2, stats.Count)
	require.Equal(t, 1, stats.Failures)
	require.InDelta(t, 15000.0, stats.Mean, 1e-9)
}

// TestSample_AllFailed reports ErrNoSamples.
func TestSample_AllFailed(t *testing.T) {
	t.Parallel()

	sensor := &sequenceSensor{values: []int{0, 0}, errs: []error{errTestRead, errTestRead}}

	_, err := sample(context.Background(), sensor, 2, 0, func(int, int, error) {})
	require.ErrorIs(t, err, ErrNoSamples)
}

// TestSample_Canceled stops at once.
func TestSample_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sample(ctx, &sequenceSensor{values: []int{1}}, 1, 0, func(int, int, error) {})
	require.ErrorIs(t, err, context.Canceled)
}

// TestParsePoint accepts dry, wet and empty.
func TestParsePoint(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "dry", "wet"} {
		p, err := ParsePoint(s)
		require.NoError(t, err)
		require.Equal(t, Point(s), p)
	}

	_, err := ParsePoint("damp")
	require.ErrorIs(t, err, errUnknownPoint)
}

// TestApply rounds the mean into the chosen point.
func TestApply(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	require.NoError(t, apply(cfg, PointDry, Stats{Mean: 26000.6}))
	require.NoError(t, apply(cfg, PointWet, Stats{Mean: 14000.4}))
	require.Equal(t, 26001, cfg.Calibration.DryRaw)
	require.Equal(t, 14000, cfg.Calibration.WetRaw)

	require.ErrorIs(t, apply(cfg, PointNone, Stats{}), errUnknownPoint)
}

// TestRun_SimulatedSave samples the soil model and writes wet_raw.
//
//nolint:paralleltest // Run applies the global log level.
func TestRun_SimulatedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	cfg := config.Default()
	cfg.LogLevel = "error"
	require.NoError(t, config.Save(path, cfg))

	var out bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: path,
		Samples:    3,
		Save:       PointWet,
		Simulate:   true,
		Output:     &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Samples: 3, failures: 0")

	saved, err := config.Load(path)
	require.NoError(t, err)
	require.NotEqual(t, cfg.Calibration.WetRaw, saved.Calibration.WetRaw)
	require.Equal(t, cfg.Calibration.DryRaw, saved.Calibration.DryRaw)
}

// TestRun_InterruptedSavesNothing treats an operator stop as a clean exit and keeps the file.
//
//nolint:paralleltest // Run applies the global log level.
func TestRun_InterruptedSavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	cfg := config.Default()
	cfg.LogLevel = "error"
	require.NoError(t, config.Save(path, cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer

	err := Run(ctx, &Options{
		ConfigPath: path,
		Samples:    3,
		Interval:   time.Hour,
		Save:       PointDry,
		Simulate:   true,
		Output:     &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Interrupted, nothing saved.")

	saved, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Calibration, saved.Calibration)
}

// TestRun_InvalidOptions rejects bad input before touching hardware.
func TestRun_InvalidOptions(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{Samples: 0})
	require.ErrorIs(t, err, errSamplesRequired)

	err = Run(context.Background(), &Options{Samples: 1, Save: "damp"})
	require.ErrorIs(t, err, errUnknownPoint)
}
