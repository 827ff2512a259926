// Package texec runs a single callback with panic recovery and context
// cancellation, reusing the small "done" signal channel each call needs
// via a pool.Pool instead of allocating a fresh one every time.
//
// It adapts two teacher pieces at once: the goroutine+done-channel+
// select-on-ctx shape of task.go's taskResultError.execute, and the
// Get/Put reuse discipline of dispatcher.go/worker.go built on
// github.com/ygrebnov/workers/pool. Here there is exactly one concrete
// callback signature — func(context.Context) (R, error) — since every
// concurrent operator's user callback already has that shape; the
// teacher's three-signature task.go adapter has no equivalent need here.
package texec

import (
	"context"
	"fmt"

	"github.com/arrowstream/flow/pool"
)

type slot struct {
	done chan struct{}
}

// Pool is a reusable set of completion-signal slots, created once per
// concurrent operator call and shared by every element it processes.
type Pool struct {
	p pool.Pool
}

// NewPool creates a Pool backed by a dynamically-sized sync.Pool, matching
// the teacher's default (MaxWorkers == 0) pool selection.
func NewPool() *Pool {
	return &Pool{p: pool.NewDynamic(func() interface{} {
		return &slot{done: make(chan struct{}, 1)}
	})}
}

// Run executes fn, recovering a panic into an error (wrapped so callers can
// still errors.Is against the caller's own sentinels) and returning early
// if ctx is cancelled before fn finishes.
func Run[R any](ctx context.Context, p *Pool, fn func(context.Context) (R, error)) (R, error) {
	s := p.p.Get().(*slot)

	var (
		result R
		err    error
	)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("texec: callback panicked: %v", r)
			}
			// The receiver below returns the slot to the pool only after it
			// has consumed this signal. If ctx wins the race, the signal
			// stays buffered and the slot is dropped rather than reused, so
			// a later Run call never observes a stale signal on it.
			s.done <- struct{}{}
		}()
		result, err = fn(ctx)
	}()

	select {
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	case <-s.done:
		p.p.Put(s)
		return result, err
	}
}
