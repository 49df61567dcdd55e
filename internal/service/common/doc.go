// Package common holds helpers shared by the hardware commands.
//
// It opens the device set for a loaded configuration (real or simulated),
// guards against a second process driving the same relay, and detects the
// current system actor (user@host) for the startup log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
