package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/auto-watering/internal/domain/moisture"
	"github.com/oshokin/auto-watering/internal/logger"
)

// Sensor yields raw probe readings.
type Sensor interface {
	Read(ctx context.Context) (int, error)
}

// Actuator runs the pump for a fixed time.
type Actuator interface {
	Activate(ctx context.Context, d time.Duration) error
}

// Reporter receives the status observations of the loop.
type Reporter interface {
	Observation(r moisture.Reading, percent float64)
	ReadFailed(at time.Time, err error)
	BelowThreshold(threshold float64)
	PumpOn(d time.Duration)
	PumpOff()
	MoistureOK()
	NextCheck(d time.Duration)
}

// Settings are the immutable loop parameters.
type Settings struct {
	// Calibration maps raw codes to percentages.
	Calibration moisture.CalibrationPoints
	// ThresholdPercent triggers watering when moisture is strictly below it.
	ThresholdPercent float64
	// Actuation is the pump run time per trigger.
	Actuation time.Duration
	// PollInterval is the wait between iterations.
	PollInterval time.Duration
}

// Outcome tells what one iteration did.
type Outcome int

const (
	// OutcomeSkipped means the sensor read failed and nothing was decided.
	OutcomeSkipped Outcome = iota
	// OutcomeIdle means moisture was at or above the threshold.
	OutcomeIdle
	// OutcomeWatered means the pump was activated.
	OutcomeWatered
)

// Loop is the polling controller. It never writes the relay itself.
type Loop struct {
	sensor   Sensor
	pump     Actuator
	report   Reporter
	settings Settings
	now      func() time.Time
}

// NewLoop wires the loop to its collaborators.
func NewLoop(sensor Sensor, pump Actuator, report Reporter, settings Settings) *Loop {
	return &Loop{
		sensor:   sensor,
		pump:     pump,
		report:   report,
		settings: settings,
		now:      time.Now,
	}
}

// Step performs one read, decide and act iteration.
// A failed read is reported and skipped; only context cancellation and
// actuator faults come back as errors.
func (l *Loop) Step(ctx context.Context) (Outcome, error) {
	raw, err := l.sensor.Read(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return OutcomeSkipped, ctxErr
		}

		l.report.ReadFailed(l.now(), err)
		logger.WarnKV(ctx, "Sensor read failed, retrying next poll", "error", err)

		return OutcomeSkipped, nil
	}

	reading := moisture.Reading{Raw: raw, Timestamp: l.now()}
	percent := reading.Percent(l.settings.Calibration)

	l.report.Observation(reading, percent)
	logger.DebugKV(ctx, "Moisture sampled", "raw", raw, "percent", percent)

	if percent >= l.settings.ThresholdPercent {
		l.report.MoistureOK()
		return OutcomeIdle, nil
	}

	l.report.BelowThreshold(l.settings.ThresholdPercent)
	l.report.PumpOn(l.settings.Actuation)
	logger.InfoKV(ctx, "Watering", "percent", percent, "duration", l.settings.Actuation.String())

	if err = l.pump.Activate(ctx, l.settings.Actuation); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return OutcomeWatered, ctxErr
		}

		return OutcomeWatered, fmt.Errorf("activate pump: %w", err)
	}

	l.report.PumpOff()

	return OutcomeWatered, nil
}

// Run repeats Step every PollInterval until ctx is done.
// An operator stop returns nil; an actuator fault is returned as is.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		l.report.NextCheck(l.settings.PollInterval)

		if err := wait(ctx, l.settings.PollInterval); err != nil {
			return nil
		}
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
