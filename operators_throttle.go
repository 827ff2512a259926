package flow

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle limits the rate at which elements pass through to at most
// elementsPerSecond, using a golang.org/x/time/rate token bucket sized to
// hold burst elements before blocking (§4.4.10). Every element consumes
// exactly one token; Wait blocks (respecting ctx) until one is available,
// which is how backpressure on a throttled Flow propagates upstream. Each
// run of the Flow gets its own token bucket.
func Throttle[T any](f Flow[T], elementsPerSecond float64, burst int) Flow[T] {
	if elementsPerSecond <= 0 || burst <= 0 {
		panic(ErrInvalidConfig)
	}
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		limiter := rate.NewLimiter(rate.Limit(elementsPerSecond), burst)
		return f.Run(ctx, sc, func(ctx context.Context, v T) error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			return emit(ctx, v)
		})
	}
}
