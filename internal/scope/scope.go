// Package scope implements the structured-concurrency primitive the flow
// algebra's concurrent operators run inside: a region that owns a set of
// goroutines, propagates the first failure, and cancels the rest.
//
// It generalizes two patterns the teacher library (github.com/ygrebnov/workers)
// keeps inline: the "first error cancels everything" shape of
// error_forwarder.go, and the deterministic multi-step shutdown of
// lifecycle.go. Supervised scopes are backed by golang.org/x/sync/errgroup,
// the pack's standard tool for exactly this shape; unsupervised scopes have
// no errgroup equivalent (errgroup always auto-cancels on first error) and
// are hand-rolled, following error_forwarder.go's "route errors through a
// channel, don't auto-propagate" approach.
package scope

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arrowstream/flow/flog"
	"github.com/arrowstream/flow/metrics"
)

// DefaultBufferCapacity is the BufferCapacity a Scope uses when none is
// configured, matching §3's documented default.
const DefaultBufferCapacity = 16

// Scope is a structured-concurrency region. It carries the BufferCapacity,
// logger and metrics provider consulted by every operator that creates
// internal channels within it (§3 "BufferCapacity ... context-provided").
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	g *errgroup.Group // non-nil only for supervised scopes

	bufferCapacity int
	logger         zerolog.Logger
	metrics        metrics.Provider
	runID          string
}

// Config carries Scope construction options, built via functional Options —
// the same builder shape the teacher uses for workers.Config/Option.
type Config struct {
	BufferCapacity int
	Logger         zerolog.Logger
	Metrics        metrics.Provider
}

// Option mutates a Config.
type Option func(*Config)

// WithBufferCapacity overrides the default internal-channel buffer size.
// Panics immediately if n <= 0 (precondition, per §6).
func WithBufferCapacity(n int) Option {
	if n <= 0 {
		panic(fmt.Errorf("scope: WithBufferCapacity requires n > 0, got %d", n))
	}
	return func(c *Config) { c.BufferCapacity = n }
}

// WithLogger sets the base logger; ForRun binds the Scope's run ID onto it.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics sets the metrics.Provider used by instrumented operators.
func WithMetrics(p metrics.Provider) Option {
	return func(c *Config) { c.Metrics = p }
}

func defaultConfig() Config {
	return Config{
		BufferCapacity: DefaultBufferCapacity,
		Logger:         flog.Disabled(),
		Metrics:        metrics.NewNoopProvider(),
	}
}

func build(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("scope: nil option")
		}
		opt(&cfg)
	}
	if cfg.BufferCapacity <= 0 {
		panic(fmt.Errorf("scope: invalid buffer capacity %d", cfg.BufferCapacity))
	}
	return cfg
}

// NewSupervised creates a supervised Scope: GoUser-spawned goroutines are
// awaited at Wait, and the first one to return an error cancels the rest
// (§4.1 "first failure cancels siblings").
func NewSupervised(parent context.Context, opts ...Option) *Scope {
	cfg := build(opts)
	g, gctx := errgroup.WithContext(parent)
	ctx, cancel := context.WithCancel(gctx)
	runID := uuid.NewString()
	return &Scope{
		ctx:            ctx,
		cancel:         cancel,
		g:              g,
		bufferCapacity: cfg.BufferCapacity,
		logger:         flog.ForRun(cfg.Logger, runID),
		metrics:        cfg.Metrics,
		runID:          runID,
	}
}

// NewUnsupervised creates an unsupervised Scope: Spawn-ed goroutines never
// auto-cancel the scope or auto-propagate their error; the operator that
// spawned them is responsible for routing failures through its own channel
// (§4.1, §9 "Fork/scope coupling").
func NewUnsupervised(parent context.Context, opts ...Option) *Scope {
	cfg := build(opts)
	ctx, cancel := context.WithCancel(parent)
	runID := uuid.NewString()
	return &Scope{
		ctx:            ctx,
		cancel:         cancel,
		g:              nil,
		bufferCapacity: cfg.BufferCapacity,
		logger:         flog.ForRun(cfg.Logger, runID),
		metrics:        cfg.Metrics,
		runID:          runID,
	}
}

// Context returns the Scope's context; every blocking operation inside the
// scope must select on its Done channel alongside its channel operations.
func (s *Scope) Context() context.Context { return s.ctx }

// Cancel cancels the Scope's context (§4.1 cancelNow), interrupting the
// blocking operations of GoUser tasks and of Spawn-ed functions that select
// on the context they are given. The flow operators' forks run on the
// context passed to Flow.Run instead and are not interrupted by Cancel.
// Safe to call multiple times and from any goroutine.
func (s *Scope) Cancel() { s.cancel() }

// BufferCapacity is the capacity new internal channels created within this
// scope should use.
func (s *Scope) BufferCapacity() int { return s.bufferCapacity }

// Logger returns the scope's run-tagged logger.
func (s *Scope) Logger() zerolog.Logger { return s.logger }

// Metrics returns the scope's metrics provider.
func (s *Scope) Metrics() metrics.Provider { return s.metrics }

// RunID is a UUID identifying this Scope, stamped onto tagged errors (see
// the root package's error_tagging.go) and onto every log line emitted from
// within it.
func (s *Scope) RunID() string { return s.runID }

// GoUser spawns f as a user task in a supervised scope: the scope's Wait
// blocks until it returns, and a non-nil error (or recovered panic) is
// reported as the scope's first error and cancels siblings. Panics if
// called on an unsupervised scope.
func (s *Scope) GoUser(f func(ctx context.Context) error) {
	if s.g == nil {
		panic("scope: GoUser called on an unsupervised scope")
	}
	s.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errCallbackPanicked, r)
			}
		}()
		return f(s.ctx)
	})
}

// Wait blocks until every GoUser task in a supervised scope has returned,
// and returns the first non-nil error seen (if any). Panics if called on an
// unsupervised scope.
func (s *Scope) Wait() error {
	if s.g == nil {
		panic("scope: Wait called on an unsupervised scope")
	}
	return s.g.Wait()
}

// Spawn starts f as a detached goroutine, recovering (and logging) panics
// without propagating them anywhere — f is responsible for reporting its
// own outcome via whatever channel the calling operator owns. Valid on
// both supervised and unsupervised scopes; used for fire-and-forget work
// like the upstream pumps of Merge, Zip and GroupedWithin. Wait does not
// await Spawn-ed goroutines.
func (s *Scope) Spawn(f func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Msg("flow: spawned fork panicked")
			}
		}()
		f(s.ctx)
	}()
}

// errCallbackPanicked is wrapped into the error GoUser reports for a
// recovered panic. It is a separate sentinel from the root package's
// ErrTaskPanicked (this package cannot import the root package without a
// cycle), and the root package does not translate one into the other.
var errCallbackPanicked = fmt.Errorf("scope: callback panicked")
