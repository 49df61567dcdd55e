// Package version carries the build metadata of the auto-watering binary.
//
// The variables are set with -ldflags "-X" at release time; local builds keep
// the defaults below. Full is logged once at controller startup.
package version
