// Package runtime provides the thin, one-call entry points most callers
// reach for instead of constructing a flow.Scope and driving Flow.Run
// themselves — the same convenience role the teacher library's Map,
// ForEach and RunAll played over its lower-level Workers type.
package runtime

import (
	"context"

	"github.com/arrowstream/flow"
)

// RunCollect drives f to completion inside a fresh Scope and returns every
// element it emitted, or the first error encountered.
func RunCollect[T any](ctx context.Context, f flow.Flow[T], opts ...flow.RunOption) ([]T, error) {
	sc := flow.NewScope(ctx, opts...)
	return flow.Collect(ctx, sc, f)
}

// RunDrain drives f to completion for its side effects only, discarding
// every emitted element. Useful for pipelines built entirely out of Tap/
// AlsoTo stages where nothing needs collecting.
func RunDrain[T any](ctx context.Context, f flow.Flow[T], opts ...flow.RunOption) error {
	sc := flow.NewScope(ctx, opts...)
	return f.Run(ctx, sc, func(context.Context, T) error { return nil })
}

// RunForEach drives f to completion, calling fn for every emitted element.
// An error from fn aborts the Flow the same as a downstream operator
// failing.
func RunForEach[T any](ctx context.Context, f flow.Flow[T], fn func(context.Context, T) error, opts ...flow.RunOption) error {
	sc := flow.NewScope(ctx, opts...)
	return f.Run(ctx, sc, func(ctx context.Context, v T) error { return fn(ctx, v) })
}
