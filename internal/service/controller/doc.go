// Package controller runs the sense, decide, act cycle of the irrigation
// controller and guarantees that the pump relay is switched off on every way
// out of it: operator stop, actuator fault or startup failure after the relay
// was opened.
package controller
