package flow

import "errors"

// Namespace prefixes every sentinel error defined by this package, so that
// error strings are unambiguous when wrapped or logged alongside errors from
// other libraries.
const Namespace = "flow"

var (
	// ErrTaskPanicked names a panicking user callback. Panics recovered
	// inside forks are reported as errors carrying the text "callback
	// panicked" from internal/scope (GoUser) or internal/texec (MapPar,
	// MapParUnordered); those errors do not wrap ErrTaskPanicked, so
	// errors.Is(err, ErrTaskPanicked) does not match them.
	ErrTaskPanicked = errors.New(Namespace + ": callback panicked")

	// ErrInvalidConfig is the panic value of an operator builder whose
	// precondition fails at build time (see §6 Preconditions), e.g. MapPar
	// with parallelism <= 0. Scope options validate separately and panic
	// with their own error.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// errTakeComplete is the internal abort marker used by Take and
	// TakeWhile to unwind upstream cleanly once enough elements have been
	// observed. It is never exposed to callers; Flow.Run (and every fused
	// operator) must translate it to a nil error at the point it
	// originates.
	errTakeComplete = errors.New(Namespace + ": take complete")
)

// isAbort reports whether err is one of the internal abort markers that
// represent successful early termination rather than failure.
func isAbort(err error) bool {
	return errors.Is(err, errTakeComplete)
}
