// Package pumptest runs the pump once for a fixed time to check the relay wiring.
package pumptest
