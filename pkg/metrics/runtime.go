package metrics

import "github.com/prometheus/client_golang/prometheus"

// RuntimeMetrics bundles the counters/gauges the step engine, register
// store and choice scheduler update during normal operation.
type RuntimeMetrics struct {
	Commits     *prometheus.CounterVec
	Aborts      *prometheus.CounterVec
	Conflicts   *prometheus.CounterVec
	Clones      *prometheus.CounterVec
	QueueDepth  *prometheus.GaugeVec
	BagDepth    *prometheus.GaugeVec
	CommitMicros *prometheus.HistogramVec
}

// NewRuntimeMetrics registers the runtime's standard metric set on reg.
func NewRuntimeMetrics(reg *Registry) *RuntimeMetrics {
	return &RuntimeMetrics{
		Commits:   reg.Counter("commits_total", "total committed steps"),
		Aborts:    reg.Counter("aborts_total", "total aborted steps", "reason"),
		Conflicts: reg.Counter("conflicts_total", "optimistic conflicts detected at commit", "kind"),
		Clones:    reg.Counter("clones_total", "clones spawned by choice()", "outcome"),
		QueueDepth: reg.Gauge("queue_depth", "items currently buffered in a queue register", "register"),
		BagDepth:   reg.Gauge("bag_depth", "items currently buffered in a bag register", "register"),
		CommitMicros: reg.Histogram("commit_micros", "commit-phase latency in microseconds", nil),
	}
}
