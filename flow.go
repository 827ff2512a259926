package flow

import "context"

// Emit is how a Flow hands an element downstream. Operators compose by
// wrapping the Emit they are given in a new Emit that transforms, filters,
// or otherwise reacts to each value before forwarding it — this is the
// "fusion" the algebra relies on: a chain of sequential operators costs one
// function-call stack per element, with no intermediate channel or buffer.
//
// An Emit (and therefore a Flow) returns an error in two situations: the
// downstream consumer failed (propagate and stop), or the operator itself
// wants to stop pulling early (Take/TakeWhile use the unexported
// errTakeComplete sentinel for this, never a panic).
type Emit[T any] func(ctx context.Context, v T) error

// Flow is a description of a producer of T values, not a running
// computation: calling Run drives it, pushing every element it produces
// through emit until the source is exhausted, emit reports an error, or ctx
// is cancelled.
//
// Flow is pull-push hybrid: the *source* pulls from wherever its elements
// come from (a slice, a channel, another Flow) at its own pace, but once
// pulled, each element is *pushed* synchronously through the operator chain
// via emit. Concurrent operators (MapPar, Merge, ...) are the seams where a
// Flow hands elements to internal channels and a Scope's forks, so that
// pushing through one branch never blocks pulling on another.
type Flow[T any] func(ctx context.Context, sc *Scope, emit Emit[T]) error

// Run drives f to completion, delivering every element to emit. Early
// termination signaled via the errTakeComplete sentinel (Take, TakeWhile)
// is not an error from the caller's perspective and is swallowed here.
func (f Flow[T]) Run(ctx context.Context, sc *Scope, emit Emit[T]) error {
	err := f(ctx, sc, emit)
	if isAbort(err) {
		return nil
	}
	return err
}

// FromSlice returns a Flow that emits each element of items in order, then
// completes. It is the simplest possible source and the one most operator
// tests are built on.
func FromSlice[T any](items []T) Flow[T] {
	return func(ctx context.Context, _ *Scope, emit Emit[T]) error {
		for _, v := range items {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := emit(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// FromChannel returns a Flow that emits every value received from ch until
// ch is closed or ctx is cancelled. Unlike the internal chanx.Channel used
// by concurrent operators, this accepts a plain Go channel so callers can
// feed a Flow from arbitrary external producers.
func FromChannel[T any](ch <-chan T) Flow[T] {
	return func(ctx context.Context, _ *Scope, emit Emit[T]) error {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if err := emit(ctx, v); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Generate returns a Flow that emits values produced by calling next
// repeatedly until it returns (zero, false, nil) (exhausted) or a non-nil
// error. This is the escape hatch for sources that are neither a slice nor
// a channel — e.g. a paginated API cursor.
func Generate[T any](next func(ctx context.Context) (T, bool, error)) Flow[T] {
	return func(ctx context.Context, _ *Scope, emit Emit[T]) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			v, ok, err := next(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := emit(ctx, v); err != nil {
				return err
			}
		}
	}
}

// Empty returns a Flow that emits nothing and completes immediately.
func Empty[T any]() Flow[T] {
	return func(context.Context, *Scope, Emit[T]) error { return nil }
}

// Single returns a Flow that emits exactly one value.
func Single[T any](v T) Flow[T] { return FromSlice([]T{v}) }
