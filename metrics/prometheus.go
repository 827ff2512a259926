package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to github.com/prometheus/client_golang
// instruments, registered against a caller-supplied Registerer. It mirrors
// the label/Observe pattern used for HTTP request metrics in production
// middleware (method/path/status labels become the instrument's
// Attributes), generalized here to whatever attributes the caller passes
// via WithAttributes (typically {"op", "flow_run_id"}).
//
// Unlike BasicProvider, PrometheusProvider creates one underlying *Vec per
// name and a distinct child instrument per distinct attribute set, matching
// how CounterVec/GaugeVec/HistogramVec work.
type PrometheusProvider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusProvider constructs a Provider backed by Prometheus
// instruments, registering them with reg (typically prometheus.DefaultRegisterer
// or a per-test prometheus.NewRegistry()).
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	return &PrometheusProvider{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(attrs map[string]string) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	return names
}

// Counter returns a Prometheus-backed monotonic counter for name. The first
// call for a given name fixes its label set from the provided attributes;
// later calls with a different label set reuse the same *Vec and pick the
// child matching their own attributes.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: cfg.Description,
		}, labelNames(cfg.Attributes))
		p.reg.MustRegister(vec)
		p.counters[name] = vec
	}
	return promCounter{c: vec.With(prometheus.Labels(cfg.Attributes))}
}

// UpDownCounter returns a Prometheus-backed gauge for name.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	vec, ok := p.updowns[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: cfg.Description,
		}, labelNames(cfg.Attributes))
		p.reg.MustRegister(vec)
		p.updowns[name] = vec
	}
	return promUpDownCounter{g: vec.With(prometheus.Labels(cfg.Attributes))}
}

// Histogram returns a Prometheus-backed histogram for name.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: name,
			Help: cfg.Description,
		}, labelNames(cfg.Attributes))
		p.reg.MustRegister(vec)
		p.histograms[name] = vec
	}
	return promHistogram{h: vec.With(prometheus.Labels(cfg.Attributes))}
}

type promCounter struct{ c prometheus.Counter }

func (p promCounter) Add(n int64) { p.c.Add(float64(n)) }

type promUpDownCounter struct{ g prometheus.Gauge }

func (p promUpDownCounter) Add(n int64) { p.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Observer }

func (p promHistogram) Record(v float64) { p.h.Observe(v) }
