package flow

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/arrowstream/flow/internal/chanx"
	"github.com/arrowstream/flow/internal/texec"
)

// indexedResult carries an element's position in the source sequence
// alongside its outcome, the same shape the teacher library's
// completionEvent used to let a reorderer recover input order from
// out-of-order completions (see reorderer.go's documented contract, which
// this type and orderedCollect below generalize).
type indexedResult[U any] struct {
	idx int
	val U
	err error
}

// orderedCollect drains in, buffering results that arrive ahead of the
// expected index, and calls emit for each index strictly in order —
// grounded on the teacher's reorderer.flushContiguous. It stops and
// returns the first error encountered, in either order or emit.
func orderedCollect[U any](ctx context.Context, in <-chan indexedResult[U], emit Emit[U]) error {
	next := 0
	buf := make(map[int]indexedResult[U])
	flush := func() error {
		for {
			r, ok := buf[next]
			if !ok {
				return nil
			}
			delete(buf, next)
			next++
			if r.err != nil {
				return r.err
			}
			if err := emit(ctx, r.val); err != nil {
				return err
			}
		}
	}
	for r := range in {
		buf[r.idx] = r
		if err := flush(); err != nil {
			return err
		}
	}
	return flush()
}

// MapPar runs fn over f's elements with up to parallelism concurrent
// callbacks, bounded by a golang.org/x/sync/semaphore.Weighted, and emits
// results in input order (§4.4.2). The first callback error cancels every
// in-flight callback and the upstream pull.
func MapPar[T, U any](f Flow[T], parallelism int, fn func(context.Context, T) (U, error)) Flow[U] {
	if parallelism <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		sem := semaphore.NewWeighted(int64(parallelism))
		out := make(chan indexedResult[U], sc.BufferCapacity())
		execs := texec.NewPool()

		var wg sync.WaitGroup
		var once sync.Once
		var firstErr error
		fail := func(err error) {
			once.Do(func() {
				firstErr = err
				cancel()
			})
		}

		go func() {
			idx := 0
			pullErr := f.Run(runCtx, sc, func(_ context.Context, v T) error {
				if err := sem.Acquire(runCtx, 1); err != nil {
					return err
				}
				i := idx
				idx++
				wg.Add(1)
				sc.Spawn(func(context.Context) {
					defer wg.Done()
					defer sem.Release(1)
					u, err := texec.Run(runCtx, execs, func(ctx context.Context) (U, error) { return fn(ctx, v) })
					if err != nil {
						err = taggedError(err, sc.RunID(), i, true)
						fail(err)
					}
					select {
					case out <- indexedResult[U]{idx: i, val: u, err: err}:
					case <-runCtx.Done():
					}
				})
				return nil
			})
			if pullErr != nil {
				fail(pullErr)
			}
			wg.Wait()
			close(out)
		}()

		if err := orderedCollect(ctx, out, emit); err != nil {
			fail(err)
			return err
		}
		if firstErr != nil {
			return firstErr
		}
		return nil
	}
}

// MapParUnordered is MapPar without the ordering guarantee: results are
// emitted in completion order, which lets a slow callback fall behind
// without head-of-line blocking the rest (§4.4.3).
func MapParUnordered[T, U any](f Flow[T], parallelism int, fn func(context.Context, T) (U, error)) Flow[U] {
	if parallelism <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[U]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		sem := semaphore.NewWeighted(int64(parallelism))
		out := make(chan indexedResult[U], sc.BufferCapacity())
		execs := texec.NewPool()

		var wg sync.WaitGroup
		var once sync.Once
		var firstErr error
		fail := func(err error) {
			once.Do(func() {
				firstErr = err
				cancel()
			})
		}

		go func() {
			idx := 0
			pullErr := f.Run(runCtx, sc, func(_ context.Context, v T) error {
				if err := sem.Acquire(runCtx, 1); err != nil {
					return err
				}
				i := idx
				idx++
				wg.Add(1)
				sc.Spawn(func(context.Context) {
					defer wg.Done()
					defer sem.Release(1)
					u, err := texec.Run(runCtx, execs, func(ctx context.Context) (U, error) { return fn(ctx, v) })
					if err != nil {
						err = taggedError(err, sc.RunID(), i, true)
						fail(err)
					}
					select {
					case out <- indexedResult[U]{idx: i, val: u, err: err}:
					case <-runCtx.Done():
					}
				})
				return nil
			})
			if pullErr != nil {
				fail(pullErr)
			}
			wg.Wait()
			close(out)
		}()

		stopped := false
		for r := range out {
			if stopped {
				continue
			}
			if r.err != nil {
				fail(r.err)
				stopped = true
				continue
			}
			if err := emit(ctx, r.val); err != nil {
				fail(err)
				stopped = true
			}
		}
		return firstErr
	}
}

// Async runs fn for every element with unbounded concurrency
// (MapParUnordered with parallelism effectively infinite, so results are
// emitted in completion order), provided as a convenience for callers
// whose callback is cheap and I/O-bound enough that a semaphore bound adds
// nothing.
func Async[T, U any](f Flow[T], fn func(context.Context, T) (U, error)) Flow[U] {
	return MapParUnordered(f, 1<<20, fn)
}

// Merge fans in a and b, emitting whichever side produces a value first,
// using Select2's native-select tie-breaking. Once one side completes
// cleanly, Merge continues draining the other alone; an Errored side fails
// the whole merge immediately, per chanx.Channel's fast-error-surfacing
// contract.
func Merge[T any](a, b Flow[T]) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		ca := chanx.New[T](sc.BufferCapacity())
		cb := chanx.New[T](sc.BufferCapacity())

		pump := func(f Flow[T], c *chanx.Channel[T]) {
			err := f.Run(runCtx, sc, func(ctx context.Context, v T) error {
				return c.Send(ctx, v)
			})
			if err != nil {
				c.Error(err)
				return
			}
			c.Done()
		}
		sc.Spawn(func(context.Context) { pump(a, ca) })
		sc.Spawn(func(context.Context) { pump(b, cb) })

		aDone, bDone := false, false
		for !aDone || !bDone {
			side, va, vb, err := chanx.Select2(runCtx, ca, cb)
			switch {
			case err != nil:
				var cl chanx.Closed
				if asClosed(err, &cl) && cl.Kind == chanx.ClosedDone {
					if side == 0 {
						aDone = true
					} else {
						bDone = true
					}
					continue
				}
				return err
			case side == 0:
				if err := emit(ctx, va); err != nil {
					return err
				}
			case side == 1:
				if err := emit(ctx, vb); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func asClosed(err error, out *chanx.Closed) bool {
	cl, ok := err.(chanx.Closed)
	if ok {
		*out = cl
	}
	return ok
}

// AlsoTo forwards every element to both the returned Flow's downstream and
// sink, blocking on sink the same as on the primary path: sink applying
// backpressure slows the whole Flow down (§4.4.9, blocking tee). Downstream
// is always offered the element first; if downstream fails, sink is told
// via Error (never blocking the unwind) before the failure is rethrown; an
// upstream failure is reported to sink via Error the same way. On clean
// upstream completion sink.Done() is called. A send failure on sink
// itself (sink already Done/Errored, or ctx cancelled) surfaces as this
// Flow's own failure, per the spec's "sink failure is the flow's failure"
// contract for the blocking variant.
func AlsoTo[T any](f Flow[T], sink *chanx.Channel[T]) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if err := emit(ctx, v); err != nil {
				sink.Error(err)
				return err
			}
			return sink.Send(ctx, v)
		})
		if err != nil {
			sink.Error(err)
			return err
		}
		sink.Done()
		return nil
	}
}

// AlsoToTap forwards every element downstream and makes a best-effort,
// non-blocking attempt to also hand it to sink: a slow, full, or already
// terminal sink silently drops the tap rather than slow or fail the
// primary path (§4.4.9, non-blocking tap — sink failures are swallowed).
// Upstream errors are still forwarded to sink, matching alsoTo's "notify
// on failure" behavior, but never block or fail on doing so.
func AlsoToTap[T any](f Flow[T], sink *chanx.Channel[T]) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if err := emit(ctx, v); err != nil {
				sink.Error(err)
				return err
			}
			sink.TrySend(v)
			return nil
		})
		if err != nil {
			sink.Error(err)
			return err
		}
		sink.Done()
		return nil
	}
}
