package flow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arrowstream/flow/internal/scope"
	"github.com/arrowstream/flow/metrics"
)

// Scope is a structured-concurrency region that every concurrent operator
// (MapPar, Merge, GroupedWithin, ...) runs its forks inside: it carries the
// BufferCapacity, Logger and Metrics Provider those forks consult. The
// operators start their forks with Scope.Spawn and handle fork failures
// themselves, each cancelling its own forks when it returns.
//
// This is an alias for the internal scope type rather than a fresh
// definition: callers never construct it directly, only via NewScope, so the
// public surface is exactly NewScope plus the Scope methods themselves.
type Scope = scope.Scope

// RunOption configures a Scope at construction time, following the
// functional-options builder shape used throughout this package's ancestry
// (see NewScope).
type RunOption = scope.Option

// WithBufferCapacity overrides the default capacity (16) given to internal
// channels created by operators running in the Scope. Panics if n <= 0.
func WithBufferCapacity(n int) RunOption { return scope.WithBufferCapacity(n) }

// WithLogger sets the base zerolog.Logger a Scope logs to. The only events
// logged are panics recovered in Spawn-ed forks, at Error level; fork
// lifecycle and timer events are not logged. Every line is additionally
// tagged with the Scope's RunID. The default is a disabled (zerolog.Nop)
// logger.
func WithLogger(l zerolog.Logger) RunOption { return scope.WithLogger(l) }

// WithMetrics sets the metrics.Provider instrumented operators report
// through. The default is metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) RunOption { return scope.WithMetrics(p) }

// NewScope creates a supervised Scope bound to ctx. Flow.Run does not wait
// on the Scope: operators start their forks with Spawn, which the Scope
// neither awaits nor cancels on failure; each operator routes its forks'
// errors and cancels them itself. This is the Scope every exported Run*
// function in the runtime package constructs internally; it's exported here
// so callers building their own pipelines with Flow directly (outside
// runtime) can drive Flow.Run themselves.
func NewScope(ctx context.Context, opts ...RunOption) *Scope {
	return scope.NewSupervised(ctx, opts...)
}
