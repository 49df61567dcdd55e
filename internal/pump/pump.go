package pump

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// State is the actuator state.
type State int

const (
	// Idle means the output is at its off level.
	Idle State = iota
	// Active means the output is at its on level.
	Active
)

// String returns a lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Output is the digital line the relay is wired to.
type Output interface {
	Out(l gpio.Level) error
}

// ErrInvalidDuration is returned by Activate for negative durations.
var ErrInvalidDuration = errors.New("activation duration must not be negative")

// errOutputRequired is returned by New without an output.
var errOutputRequired = errors.New("pump output must be provided")

// Pump owns the relay output.
type Pump struct {
	// mu guards the output writes and state, never the activation wait.
	mu    sync.Mutex
	out   Output
	state State

	on  gpio.Level
	off gpio.Level
}

// Option configures a Pump.
type Option func(*Pump)

// WithOffLevel sets the level that keeps the pump stopped; the opposite level runs it.
// Pass gpio.Low for relay boards that switch on a high level.
func WithOffLevel(off gpio.Level) Option {
	return func(p *Pump) {
		p.on, p.off = !off, off
	}
}

// New wraps out and immediately drives it to the off level.
// Relays are active-low unless WithOffLevel says otherwise.
func New(out Output, opts ...Option) (*Pump, error) {
	if out == nil {
		return nil, errOutputRequired
	}

	p := &Pump{
		out: out,
		on:  gpio.Low,
		off: gpio.High,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.Deactivate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Activate runs the pump for d and stops it before returning.
// If ctx is done first the pump is stopped early and ctx.Err() is returned.
// A failed off write leaves the state Active so a later Deactivate retries it.
func (p *Pump) Activate(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, d)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.drive(p.on, Active); err != nil {
		// The line may be half switched; try to leave it off.
		return errors.Join(fmt.Errorf("start pump: %w", err), p.Deactivate())
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	var waitErr error

	select {
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-timer.C:
	}

	if err := p.Deactivate(); err != nil {
		return errors.Join(waitErr, err)
	}

	return waitErr
}

// Deactivate drives the output to the off level. It is idempotent and safe
// to call while Activate is waiting.
func (p *Pump) Deactivate() error {
	if err := p.drive(p.off, Idle); err != nil {
		return fmt.Errorf("stop pump: %w", err)
	}

	return nil
}

// State returns the current actuator state.
func (p *Pump) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// drive writes level and records next only when the write succeeded.
func (p *Pump) drive(level gpio.Level, next State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.out.Out(level); err != nil {
		return err
	}

	p.state = next

	return nil
}
