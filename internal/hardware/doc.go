// Package hardware opens the physical devices of the controller through
// periph.io: the relay pin that drives the pump and the ADS1115 converter the
// soil probe is wired to. Devices bundles them into one value that is created
// at startup and handed to every component, so nothing reaches for a global
// pin or bus. A simulated soil model stands in for both on a bench machine.
package hardware
