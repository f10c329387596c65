// Package metrics exposes runtime counters and gauges over Prometheus,
// backed by the real github.com/prometheus/client_golang registry, so
// any embedding host gets a standard /metrics endpoint for free.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is a get-or-create wrapper over a prometheus.Registerer.
type Registry struct {
	mu         sync.Mutex
	reg        *prometheus.Registry
	namespace  string
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewRegistry creates an empty Registry. namespace is prepended to every
// metric name (e.g. "glas" produces "glas_commits_total").
func NewRegistry(namespace string) *Registry {
	return &Registry{
		reg:        prometheus.NewRegistry(),
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Counter returns the CounterVec registered under name, creating it (with
// the given label names) on first access.
func (r *Registry) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)
	r.counters[name] = c
	return c
}

// Gauge returns the GaugeVec registered under name, creating it on first
// access.
func (r *Registry) Gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(g)
	r.gauges[name] = g
	return g
}

// Histogram returns the HistogramVec registered under name, creating it on
// first access.
func (r *Registry) Histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	r.reg.MustRegister(h)
	r.histograms[name] = h
	return h
}

// Handler returns an http.Handler serving this registry's metrics in
// Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
