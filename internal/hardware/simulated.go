package hardware

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/oshokin/auto-watering/internal/domain/moisture"
)

const (
	// simulatedDryingPerSecond is how fast the raw code climbs while the pump is off.
	simulatedDryingPerSecond = 5.0
	// simulatedWettingPerSecond is how fast the raw code drops while the pump runs.
	simulatedWettingPerSecond = 1000.0
	// simulatedJitter is the peak noise added to every sample.
	simulatedJitter = 40
	// simulatedStartTenths places the first reading three tenths of the span below dry.
	simulatedStartTenths = 3
)

// Soil is a bench stand-in for the probe and the relay. Its raw code drifts
// towards the dry end while the relay is off and towards the wet end while it
// is on, so pump runs show up in later readings.
type Soil struct {
	mu sync.Mutex

	raw     float64
	dryRaw  float64
	wetRaw  float64
	onLevel gpio.Level
	pumping bool
	last    time.Time

	drying  float64
	wetting float64
	jitter  int

	now   func() time.Time
	noise *rand.Rand
}

// NewSoil builds a soil model spanning the calibration points.
func NewSoil(calib moisture.CalibrationPoints, activeHigh bool) *Soil {
	dry, wet := float64(calib.DryRaw), float64(calib.WetRaw)
	if !calib.Valid() {
		dry, wet = 25000, 15000
	}

	return &Soil{
		raw:     dry - (dry-wet)*simulatedStartTenths/10,
		dryRaw:  dry,
		wetRaw:  wet,
		onLevel: !OffLevelFor(activeHigh),
		drying:  simulatedDryingPerSecond,
		wetting: simulatedWettingPerSecond,
		jitter:  simulatedJitter,
		now:     time.Now,
		//nolint:gosec // Noise for a simulation, not a secret.
		noise: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// Read returns the current raw code with a little noise.
func (s *Soil) Read(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.advance()

	value := int(s.raw)
	if s.jitter > 0 {
		value += s.noise.IntN(2*s.jitter+1) - s.jitter
	}

	return value, nil
}

// Out switches the simulated pump.
func (s *Soil) Out(l gpio.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advance()
	s.pumping = l == s.onLevel

	return nil
}

// Pumping reports whether the simulated relay is on.
func (s *Soil) Pumping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pumping
}

// advance applies drying or wetting for the time since the last event.
func (s *Soil) advance() {
	now := s.now()
	if s.last.IsZero() {
		s.last = now
		return
	}

	elapsed := now.Sub(s.last).Seconds()
	s.last = now

	if s.pumping {
		s.raw -= s.wetting * elapsed
	} else {
		s.raw += s.drying * elapsed
	}

	// Real probes saturate a bit past the calibration points.
	margin := (s.dryRaw - s.wetRaw) / 10
	s.raw = max(s.wetRaw-margin, min(s.dryRaw+margin, s.raw))
}

// Simulate returns a device set backed by one Soil model, with the relay at its off level.
func Simulate(calib moisture.CalibrationPoints, activeHigh bool) *Devices {
	soil := NewSoil(calib, activeHigh)
	off := OffLevelFor(activeHigh)

	//nolint:errcheck // The simulated relay never fails.
	_ = soil.Out(off)

	return &Devices{
		Sensor:   soil,
		Relay:    soil,
		OffLevel: off,
	}
}
