package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the scheduler and engine
type Registry struct {
	// Scheduler metrics: counters and histogram are recorded through the
	// Monitor hook, the two gauges are set by the engine
	TasksAddedTotal     prometheus.Counter
	TasksScheduledTotal prometheus.Counter
	SplashRebuildsTotal *prometheus.CounterVec
	SplashLength        prometheus.Histogram
	PendingVertices     prometheus.Gauge
	SleepingWorkers     prometheus.Gauge

	// Engine metrics
	UpdatesAppliedTotal *prometheus.CounterVec
	UpdateDuration      prometheus.Histogram
	WorkersRunning      prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all scheduler metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initSchedulerMetrics()
	r.initEngineMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
