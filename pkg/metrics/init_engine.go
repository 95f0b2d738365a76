package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.UpdatesAppliedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "splash_updates_applied_total",
			Help: "Total number of update functions applied per worker",
		},
		[]string{"worker"},
	)

	r.UpdateDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "splash_update_duration_seconds",
			Help:    "Update function execution time in seconds",
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
		},
	)

	r.WorkersRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "splash_workers_running",
			Help: "Number of engine workers currently running",
		},
	)
}
