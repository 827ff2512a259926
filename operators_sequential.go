package flow

import "context"

// This file holds the sequential operators: ones that never need their own
// channel or fork because each element can be transformed, filtered, or
// counted synchronously as it passes through. Each operator wraps the Emit
// it's given in a new Emit and returns a new Flow — the fusion described in
// flow.go.

// Map transforms every element of f with fn.
func Map[T, U any](f Flow[T], fn func(context.Context, T) (U, error)) Flow[U] {
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			u, err := fn(ctx, v)
			if err != nil {
				return err
			}
			return emit(ctx, u)
		})
	}
}

// Filter keeps only elements for which pred returns true.
func Filter[T any](f Flow[T], pred func(context.Context, T) (bool, error)) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			ok, err := pred(ctx, v)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return emit(ctx, v)
		})
	}
}

// Tap calls fn for its side effect on every element, then forwards it
// unchanged. An error from fn aborts the Flow.
func Tap[T any](f Flow[T], fn func(context.Context, T) error) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if err := fn(ctx, v); err != nil {
				return err
			}
			return emit(ctx, v)
		})
	}
}

// MapConcat maps each element to zero or more output elements, emitting
// each in order. Useful for expanding one element into many without a
// concurrent fork.
func MapConcat[T, U any](f Flow[T], fn func(context.Context, T) ([]U, error)) Flow[U] {
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			us, err := fn(ctx, v)
			if err != nil {
				return err
			}
			for _, u := range us {
				if err := emit(ctx, u); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// MapStateful is Map with an explicit, caller-owned accumulator threaded
// through each call, for operators that need running state (a counter, a
// rolling sum) without resorting to a closure-captured variable. If
// onComplete is non-nil, it is called once upstream completes cleanly with
// the final state, and may emit one trailing element (ok == false skips
// it) — e.g. a running average that only has a meaningful value once the
// source is exhausted.
func MapStateful[T, U, S any](f Flow[T], initial S, fn func(ctx context.Context, state S, v T) (S, U, error), onComplete func(ctx context.Context, state S) (U, bool, error)) Flow[U] {
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		state := initial
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			next, u, err := fn(ctx, state, v)
			if err != nil {
				return err
			}
			state = next
			return emit(ctx, u)
		})
		if err != nil {
			return err
		}
		if onComplete == nil {
			return nil
		}
		u, ok, err := onComplete(ctx, state)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return emit(ctx, u)
	}
}

// MapStatefulConcat is MapStateful generalized to emit zero or more output
// elements per input, the way MapConcat generalizes Map: fn returns both
// the next state and a slice of outputs for v, every element of which is
// emitted in order before the next input is pulled.
func MapStatefulConcat[T, U, S any](f Flow[T], initial S, fn func(ctx context.Context, state S, v T) (S, []U, error), onComplete func(ctx context.Context, state S) ([]U, error)) Flow[U] {
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		state := initial
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			next, us, err := fn(ctx, state, v)
			if err != nil {
				return err
			}
			state = next
			for _, u := range us {
				if err := emit(ctx, u); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if onComplete == nil {
			return nil
		}
		us, err := onComplete(ctx, state)
		if err != nil {
			return err
		}
		for _, u := range us {
			if err := emit(ctx, u); err != nil {
				return err
			}
		}
		return nil
	}
}

// FilterMap maps and filters in one pass: pf returns (zero, false) to drop
// the element, or (u, true) to emit u. Grounded on the teleport itertools
// stream package's FilterMap, which plays the same role over its own
// pull-based Stream[T] (§4.5's collect(pf) contract).
func FilterMap[T, U any](f Flow[T], pf func(context.Context, T) (U, bool, error)) Flow[U] {
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			u, ok, err := pf(ctx, v)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return emit(ctx, u)
		})
	}
}

// Take emits at most n elements, then terminates upstream cleanly without
// treating that as an error — the spec.md-mandated behavior for early
// termination, implemented here via the unexported errTakeComplete
// sentinel rather than a panic (idiomatic Go: panics are for programmer
// errors, not control flow).
func Take[T any](f Flow[T], n int) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		if n <= 0 {
			return nil
		}
		count := 0
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if err := emit(ctx, v); err != nil {
				return err
			}
			count++
			if count >= n {
				return errTakeComplete
			}
			return nil
		})
		if isAbort(err) {
			return nil
		}
		return err
	}
}

// TakeWhile emits elements while pred holds, then terminates upstream
// cleanly (the failing element itself is not emitted unless inclusive is
// true).
func TakeWhile[T any](f Flow[T], pred func(context.Context, T) (bool, error), inclusive bool) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			ok, err := pred(ctx, v)
			if err != nil {
				return err
			}
			if !ok {
				if inclusive {
					if err := emit(ctx, v); err != nil {
						return err
					}
				}
				return errTakeComplete
			}
			return emit(ctx, v)
		})
		if isAbort(err) {
			return nil
		}
		return err
	}
}

// Drop discards the first n elements, then emits every element after.
func Drop[T any](f Flow[T], n int) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		remaining := n
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if remaining > 0 {
				remaining--
				return nil
			}
			return emit(ctx, v)
		})
	}
}

// Grouped batches elements into fixed-size slices, emitting a final short
// batch (if any) when the source completes.
func Grouped[T any](f Flow[T], size int) Flow[[]T] {
	if size <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[[]T]) error {
		batch := make([]T, 0, size)
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			batch = append(batch, v)
			if len(batch) < size {
				return nil
			}
			out := batch
			batch = make([]T, 0, size)
			return emit(ctx, out)
		})
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			return emit(ctx, batch)
		}
		return nil
	}
}

// GroupedWeighted batches elements until the running cost (as reported by
// weight) reaches minWeight, then emits the batch, including the element
// that reached it, and starts a new one. A final batch whose cost is still
// below minWeight is emitted when the source completes.
func GroupedWeighted[T any](f Flow[T], minWeight int64, weight func(T) int64) Flow[[]T] {
	if minWeight <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[[]T]) error {
		var batch []T
		var cost int64
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			batch = append(batch, v)
			cost += weight(v)
			if cost < minWeight {
				return nil
			}
			out := batch
			batch = nil
			cost = 0
			return emit(ctx, out)
		})
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			return emit(ctx, batch)
		}
		return nil
	}
}

// Sliding emits overlapping windows of size elements, advancing by step
// each time (step < size means overlap; step == size is equivalent to
// Grouped; step > size skips the step-size elements between windows). A
// trailing short window is emitted once the source completes,
// unless its content is already entirely covered by the last emitted
// window — tracked via newSinceFlush, the count of elements appended since
// the most recent flush (§4.5/§8: "last window appears only if it was not
// already emitted mid-stream").
func Sliding[T any](f Flow[T], size, step int) Flow[[]T] {
	if size <= 0 || step <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[[]T]) error {
		var buf []T
		flushedOnce := false
		newSinceFlush := 0
		skip := 0
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if skip > 0 {
				skip--
				return nil
			}
			buf = append(buf, v)
			newSinceFlush++
			if len(buf) < size {
				return nil
			}
			window := make([]T, size)
			copy(window, buf[len(buf)-size:])
			if err := emit(ctx, window); err != nil {
				return err
			}
			flushedOnce = true
			if step >= len(buf) {
				skip = step - len(buf)
				buf = nil
			} else {
				buf = buf[step:]
			}
			newSinceFlush = 0
			return nil
		})
		if err != nil {
			return err
		}
		if len(buf) > 0 && (!flushedOnce || newSinceFlush > 0) {
			tail := make([]T, len(buf))
			copy(tail, buf)
			return emit(ctx, tail)
		}
		return nil
	}
}

// IntersperseOption configures the optional leading/trailing elements
// Intersperse emits alongside its required separator, following this
// package's functional-options convention (see RunOption).
type IntersperseOption[T any] func(*intersperseConfig[T])

type intersperseConfig[T any] struct {
	start    T
	end      T
	hasStart bool
	hasEnd   bool
}

// WithIntersperseStart emits start once, before the first element (even if
// upstream is empty).
func WithIntersperseStart[T any](start T) IntersperseOption[T] {
	return func(c *intersperseConfig[T]) { c.start, c.hasStart = start, true }
}

// WithIntersperseEnd emits end once, after the last element (even if
// upstream is empty).
func WithIntersperseEnd[T any](end T) IntersperseOption[T] {
	return func(c *intersperseConfig[T]) { c.end, c.hasEnd = end, true }
}

// Intersperse emits sep between every pair of consecutive elements, plus an
// optional leading and/or trailing element (§4.5's
// "intersperse(start?,inject,end?)"). Go has no element-widening between
// sep/start/end and the stream's own element type (spec.md §9's "variance
// and element widening" note), so callers mixing element kinds — e.g.
// bracketing a stream of ints with string delimiters — must first Map onto
// a shared sum type.
func Intersperse[T any](f Flow[T], sep T, opts ...IntersperseOption[T]) Flow[T] {
	var cfg intersperseConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		if cfg.hasStart {
			if err := emit(ctx, cfg.start); err != nil {
				return err
			}
		}
		first := true
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if !first {
				if err := emit(ctx, sep); err != nil {
					return err
				}
			}
			first = false
			return emit(ctx, v)
		})
		if err != nil {
			return err
		}
		if cfg.hasEnd {
			return emit(ctx, cfg.end)
		}
		return nil
	}
}

// Concat runs f, then g, as a single Flow.
func Concat[T any](f, g Flow[T]) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		if err := f.Run(ctx, sc, emit); err != nil {
			return err
		}
		return g.Run(ctx, sc, emit)
	}
}

// Prepend emits v, then runs f.
func Prepend[T any](f Flow[T], v T) Flow[T] {
	return Concat(Single(v), f)
}

// OrElse runs f; if f completes having emitted nothing at all, runs
// fallback instead. Errors from f are not swallowed — only a clean, empty
// completion triggers the fallback.
func OrElse[T any](f, fallback Flow[T]) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		emitted := false
		if err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			emitted = true
			return emit(ctx, v)
		}); err != nil {
			return err
		}
		if emitted {
			return nil
		}
		return fallback.Run(ctx, sc, emit)
	}
}

// Collect runs f to completion and returns every emitted element as a
// slice. It is the simplest possible terminal operator, used by the
// runtime package's RunCollect and by tests that want to assert on a
// Flow's full output.
func Collect[T any](ctx context.Context, sc *Scope, f Flow[T]) ([]T, error) {
	var out []T
	err := f.Run(ctx, sc, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
