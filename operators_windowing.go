package flow

import (
	"context"
	"time"
)

// groupedWithinState is the three-mode timer state machine GroupedWithin and
// GroupedWeightedWithin drive, grounded on juniper's stream.BatchFunc: a
// timer is armed as soon as the first element of a new batch arrives, and
// firing has two outcomes depending on whether anything has arrived since
// the last flush — "fired nonempty" (flush now, re-arm on the next
// element) versus "fired empty" (nothing to flush; wait for the next
// element before re-arming, so an idle source doesn't spin the timer).
type groupedWithinState[T any] struct {
	batch   []T
	cost    int64
	timer   *time.Timer
	armed   bool
	timerC  <-chan time.Time
}

// GroupedWithin batches elements by count, flushing early if interval
// elapses since the first element of the current batch arrived (§4.4.8).
// A batch is emitted as soon as it holds size elements.
// An idle source never fires an empty batch.
func GroupedWithin[T any](f Flow[T], size int, interval time.Duration) Flow[[]T] {
	if size <= 0 || interval <= 0 {
		panic(ErrInvalidConfig)
	}
	return groupedWithinImpl(f, func(T) int64 { return 1 }, int64(size), interval)
}

// GroupedWeightedWithin is GroupedWithin generalized to a caller-supplied
// per-element cost, flushing when either the running cost reaches
// minWeight (the batch includes the element that reached it) or interval
// elapses, whichever comes first (§4.4.8).
func GroupedWeightedWithin[T any](f Flow[T], minWeight int64, weight func(T) int64, interval time.Duration) Flow[[]T] {
	if minWeight <= 0 || interval <= 0 {
		panic(ErrInvalidConfig)
	}
	return groupedWithinImpl(f, weight, minWeight, interval)
}

func groupedWithinImpl[T any](f Flow[T], weight func(T) int64, minWeight int64, interval time.Duration) Flow[[]T] {
	return func(ctx context.Context, sc *Scope, emit Emit[[]T]) error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		in := make(chan T, sc.BufferCapacity())
		done := make(chan error, 1)

		sc.Spawn(func(context.Context) {
			err := f.Run(runCtx, sc, func(ctx context.Context, v T) error {
				select {
				case in <- v:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			close(in)
			done <- err
		})

		st := &groupedWithinState[T]{}
		flush := func() error {
			if len(st.batch) == 0 {
				return nil
			}
			out := st.batch
			st.batch = nil
			st.cost = 0
			return emit(ctx, out)
		}
		disarm := func() {
			if st.armed && st.timer != nil {
				st.timer.Stop()
			}
			st.armed = false
			st.timerC = nil
		}
		arm := func() {
			st.timer = time.NewTimer(interval)
			st.timerC = st.timer.C
			st.armed = true
		}

		sourceOpen := true
		var sourceErr error
		for sourceOpen {
			select {
			case v, ok := <-in:
				if !ok {
					sourceOpen = false
					continue
				}
				st.batch = append(st.batch, v)
				st.cost += weight(v)
				if st.cost >= minWeight {
					if err := flush(); err != nil {
						disarm()
						return err
					}
					disarm()
				} else if !st.armed {
					arm()
				}
			case <-st.timerC:
				if err := flush(); err != nil {
					disarm()
					return err
				}
				disarm()
			case <-ctx.Done():
				disarm()
				return ctx.Err()
			}
		}
		disarm()
		sourceErr = <-done
		if sourceErr != nil {
			return sourceErr
		}
		return flush()
	}
}
