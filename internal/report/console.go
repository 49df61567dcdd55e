// Package report renders the operator status lines of the controller.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/auto-watering/internal/domain/moisture"
)

const (
	// clockLayout is the timestamp prefix of observation lines.
	clockLayout = "15:04:05"
	// separatorWidth is the width of the line printed between polls.
	separatorWidth = 40
)

// Console writes plain text status lines. Write errors are ignored: the
// console is a best-effort sink and must never stop the control loop.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Starting announces hardware initialisation.
func (c *Console) Starting() {
	c.println("Initializing automatic watering system...")
}

// Ready prints the effective settings once the devices are up.
func (c *Console) Ready(threshold float64, actuation time.Duration) {
	c.println("System ready.")
	c.printf("Configuration: threshold %g%%, pump time %s\n", threshold, actuation)
	c.separator()
}

// Observation prints one poll result.
func (c *Console) Observation(r moisture.Reading, percent float64) {
	c.printf("[%s] Moisture: %.1f%% | Raw: %d\n", r.Timestamp.Format(clockLayout), percent, r.Raw)
}

// ReadFailed prints a skipped poll.
func (c *Console) ReadFailed(at time.Time, err error) {
	c.printf("[%s] Sensor read failed, skipping this check: %v\n", at.Format(clockLayout), err)
}

// BelowThreshold announces that watering is about to start.
func (c *Console) BelowThreshold(threshold float64) {
	c.printf("  -> Moisture below threshold (%g%%), starting watering...\n", threshold)
}

// PumpOn is printed when the pump starts.
func (c *Console) PumpOn(d time.Duration) {
	c.printf("[PUMP] Pump on for %s...\n", d)
}

// PumpOff is printed when the pump has stopped.
func (c *Console) PumpOff() {
	c.println("[PUMP] Pump off.")
}

// MoistureOK is printed when no watering is needed.
func (c *Console) MoistureOK() {
	c.println("  -> Moisture OK, no watering needed.")
}

// NextCheck closes a poll block.
func (c *Console) NextCheck(d time.Duration) {
	c.printf("  -> Next check in %s.\n", d)
	c.separator()
}

// Stopped acknowledges an operator stop.
func (c *Console) Stopped() {
	c.println("")
	c.println("Stopped by operator.")
}

// CleaningUp is printed before the pump is forced off.
func (c *Console) CleaningUp() {
	c.println("Cleaning up...")
}

// Released closes the session.
func (c *Console) Released() {
	c.println("Shutdown complete. All resources released.")
}

// Printf writes a free-form line for the auxiliary commands.
func (c *Console) Printf(format string, args ...any) {
	c.printf(format, args...)
}

func (c *Console) separator() {
	c.println(strings.Repeat("-", separatorWidth))
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(c.w, s)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.w, format, args...)
}
