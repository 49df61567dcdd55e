// Package pump drives the irrigation pump through a relay output.
//
// The Pump is the only writer of the relay. It starts in Idle with the output
// at its off level, runs for a fixed duration on Activate and always returns
// the output to off, even when the wait is cut short by the context.
package pump
