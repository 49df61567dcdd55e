// Package logger wraps zap to give the controller:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes,
//   - leveled convenience functions (Infof, InfoKV, WarnKV, ErrorKV, etc.).
//
// Stdout is reserved for the operator status lines, so diagnostics never
// interleave with them. Services accept a context and pull the logger from it.
package logger
