// Package flow provides a pull-push hybrid streaming combinator library: a
// Flow[T] describes an asynchronous sequence of values with bounded
// buffering, structured concurrency, backpressure, and deterministic
// shutdown.
//
// Constructors
//   - FromSlice / FromChannel: build a Flow from an existing collection or
//     channel.
//   - Generate: build a Flow from a pull function for sources that are
//     neither a slice nor a channel.
//   - Empty / Single: the zero- and one-element Flows used to build others.
//
// Every combinator (Map, Filter, MapPar, Merge, ...) is itself a function
// from Flow to Flow: there is no builder type to accumulate state in,
// which is what lets fused sequential operators share one Emit callback
// with no intermediate buffering.
//
// Running a Flow
// A Flow is an immutable, reusable description; it does no work until run.
// Running is always scoped to a *Scope (constructed via NewScope, backed by
// internal/scope), which supplies the buffer capacity used by concurrent
// operators, the metrics provider used by Observe, the run ID used to tag
// errors, and the logger for panics in spawned forks. The runtime package
// offers convenience entry points (RunCollect, RunDrain, RunForEach) that
// build a Scope for the common case.
//
// Defaults
// Unless overridden via RunOption, a Scope uses:
//   - BufferCapacity: 16
//   - Metrics: metrics.NewNoopProvider()
//   - Logger: a disabled zerolog.Logger (flog.Disabled)
//
// Channel lifecycle
// Concurrent operators (MapPar, MapParUnordered, Merge, Flatten, Interleave,
// GroupedWithin) open internal bounded channels sized by the Scope's buffer
// capacity. These channels are never exposed publicly; they are created,
// drained and terminated entirely within the operator's lifetime.
//
// Ordering
//   - Fused sequential operators and MapPar preserve input order.
//   - MapParUnordered, Merge and Flatten emit in arrival/completion order.
package flow
