// Package config defines the controller settings and helpers to load,
// validate and save them in YAML format.
//
// Settings are read once at startup and never change while the control loop
// runs. Missing keys keep the values from Default.
package config
