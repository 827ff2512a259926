package flow

import (
	"context"
	"sync"

	"github.com/arrowstream/flow/internal/chanx"
)

// Flatten turns a Flow of Flow[T] into a single Flow[T], running every
// inner Flow concurrently (bounded by parallelism) and forwarding whatever
// each produces as soon as it's available (§4.4.5).
//
// Rather than a literal dynamic select over however many inner Flows
// happen to be in flight, each inner Flow gets its own forwarder fork that
// pushes into one shared, merged channel — the alternative the windowing
// note in §9 calls out explicitly, and the one juniper's stream.Flatten
// also takes (one forwarding goroutine per substream feeding a shared
// output channel), which avoids needing a runtime-generic select
// primitive entirely.
func Flatten[T any](f Flow[Flow[T]], parallelism int) Flow[T] {
	if parallelism <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		merged := chanx.New[T](sc.BufferCapacity())
		gate := make(chan struct{}, parallelism)

		var wg sync.WaitGroup
		var once sync.Once
		fail := func(err error) {
			once.Do(func() {
				merged.Error(err)
				cancel()
			})
		}

		outerDone := make(chan struct{})
		sc.Spawn(func(context.Context) {
			defer close(outerDone)
			err := f.Run(runCtx, sc, func(_ context.Context, inner Flow[T]) error {
				select {
				case gate <- struct{}{}:
				case <-runCtx.Done():
					return runCtx.Err()
				}
				wg.Add(1)
				sc.Spawn(func(context.Context) {
					defer wg.Done()
					defer func() { <-gate }()
					if err := inner.Run(runCtx, sc, func(ctx context.Context, v T) error {
						return merged.Send(ctx, v)
					}); err != nil {
						fail(err)
					}
				})
				return nil
			})
			if err != nil {
				fail(err)
			}
		})

		sc.Spawn(func(context.Context) {
			<-outerDone
			wg.Wait()
			merged.Done() // no-op if already Errored by fail()
		})

		for {
			v, err := merged.Receive(ctx)
			if err != nil {
				var cl chanx.Closed
				if asClosed(err, &cl) && cl.Kind == chanx.ClosedDone {
					return nil
				}
				return err
			}
			if err := emit(ctx, v); err != nil {
				fail(err)
				return err
			}
		}
	}
}

// Interleave alternates between a and b in fixed-size segments: segSize
// elements from a, then segSize from b, repeating until both sources are
// exhausted. If one side finishes early: when eagerComplete is true,
// Interleave stops immediately without draining the remaining side; when
// false, the remaining side is drained alone to completion (§4.4.6).
func Interleave[T any](a, b Flow[T], segSize int, eagerComplete bool) Flow[T] {
	if segSize <= 0 {
		panic(ErrInvalidConfig)
	}
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

		aOpen, bOpen := true, true

		// drainSide reports whether it stopped because its side completed
		// (as opposed to running the full segment or hitting an error).
		drainSide := func(c *chanx.Channel[T], open *bool) (sideCompleted bool, err error) {
			for i := 0; i < segSize && *open; i++ {
				v, rerr := c.Receive(ctx)
				if rerr != nil {
					if isChanDone(rerr) {
						*open = false
						return true, nil
					}
					return false, rerr
				}
				if err := emit(ctx, v); err != nil {
					return false, err
				}
			}
			return false, nil
		}

		turn := 0
		for aOpen || bOpen {
			var completed bool
			var err error
			if turn == 0 {
				if aOpen {
					completed, err = drainSide(ca, &aOpen)
				}
			} else {
				if bOpen {
					completed, err = drainSide(cb, &bOpen)
				}
			}
			if err != nil {
				return err
			}
			if completed && eagerComplete {
				return nil
			}
			turn = 1 - turn
		}
		return nil
	}
}

// Zip pairs elements of a and b positionally, stopping as soon as either
// side completes (§4.4.7's "zip" variant).
func Zip[A, B, R any](a Flow[A], b Flow[B], combine func(A, B) R) Flow[R] {
	var zeroA A
	var zeroB B
	return zipImpl(a, b, combine, false, zeroA, zeroB)
}

// ZipAll is Zip extended to the length of the longer side: once one side
// completes, the other continues alone with the missing side filled by the
// caller-supplied lDefault/rDefault (§4.4.7's "zipAll" variant).
func ZipAll[A, B, R any](a Flow[A], b Flow[B], combine func(A, B) R, lDefault A, rDefault B) Flow[R] {
	return zipImpl(a, b, combine, true, lDefault, rDefault)
}

func zipImpl[A, B, R any](a Flow[A], b Flow[B], combine func(A, B) R, all bool, lDefault A, rDefault B) Flow[R] {
	return func(ctx context.Context, sc *Scope, emit Emit[R]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		ca := chanx.New[A](sc.BufferCapacity())
		cb := chanx.New[B](sc.BufferCapacity())

		sc.Spawn(func(context.Context) {
			err := a.Run(runCtx, sc, func(ctx context.Context, v A) error { return ca.Send(ctx, v) })
			if err != nil {
				ca.Error(err)
				return
			}
			ca.Done()
		})
		sc.Spawn(func(context.Context) {
			err := b.Run(runCtx, sc, func(ctx context.Context, v B) error { return cb.Send(ctx, v) })
			if err != nil {
				cb.Error(err)
				return
			}
			cb.Done()
		})

		for {
			va, aErr := ca.Receive(ctx)
			vb, bErr := cb.Receive(ctx)

			aDone, bDone := isChanDone(aErr), isChanDone(bErr)
			if aErr != nil && !aDone {
				return aErr
			}
			if bErr != nil && !bDone {
				return bErr
			}
			if aDone && bDone {
				return nil
			}
			if !all && (aDone || bDone) {
				return nil
			}
			if aDone {
				va = lDefault
			}
			if bDone {
				vb = rDefault
			}
			if err := emit(ctx, combine(va, vb)); err != nil {
				return err
			}
		}
	}
}

func isChanDone(err error) bool {
	var cl chanx.Closed
	return asClosed(err, &cl) && cl.Kind == chanx.ClosedDone
}
