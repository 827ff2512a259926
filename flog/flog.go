// Package flog centralizes the structured-logging conventions used across
// Scope and the concurrent operators, following the field-tagged, leveled
// logging style of github.com/rs/zerolog as used in request-scoped
// middleware (Str("request_id", ...), Dur("duration", ...), etc.).
//
// Nothing is logged per element. The only log line the library writes is
// an Error-level record of a panic recovered in a Scope.Spawn-ed fork,
// tagged with the owning Scope's run ID; fork lifecycle and timer events
// are not logged.
package flog

import "github.com/rs/zerolog"

// ForRun returns a logger derived from base with the flow run's correlation
// ID bound once, so every subsequent log line from operators inside that run
// carries it without repeating the field at each call site.
func ForRun(base zerolog.Logger, runID string) zerolog.Logger {
	return base.With().Str("flow_run_id", runID).Logger()
}

// Disabled returns a logger that discards everything, used as the Scope
// default so a Flow run with no logger configured pays no logging cost.
func Disabled() zerolog.Logger {
	return zerolog.Nop()
}
