package flow

import (
	"context"
	"time"

	"github.com/arrowstream/flow/metrics"
)

// Observe wraps f so every emitted element and every failure is reported
// through the owning Scope's metrics.Provider, tagged with op so multiple
// Observe calls in one pipeline stay distinguishable. It's a supplement
// beyond the core algebra: call it around whichever stage of a pipeline an
// operator needs visibility into, without changing that stage's output
// type or values.
func Observe[T any](f Flow[T], op string) Flow[T] {
	return func(ctx context.Context, sc *Scope, emit Emit[T]) error {
		attrs := metrics.WithAttributes(map[string]string{"op": op, "flow_run_id": sc.RunID()})
		elements := sc.Metrics().Counter("flow_elements_total", attrs)
		failures := sc.Metrics().Counter("flow_failures_total", attrs)
		inFlight := sc.Metrics().UpDownCounter("flow_inflight", attrs)
		latency := sc.Metrics().Histogram("flow_element_seconds", attrs, metrics.WithUnit("seconds"))

		inFlight.Add(1)
		defer inFlight.Add(-1)

		start := time.Now()
		err := f.Run(ctx, sc, func(ctx context.Context, v T) error {
			elements.Add(1)
			err := emit(ctx, v)
			latency.Record(time.Since(start).Seconds())
			start = time.Now()
			return err
		})
		if err != nil {
			failures.Add(1)
		}
		return err
	}
}
