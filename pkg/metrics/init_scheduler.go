package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSchedulerMetrics() {
	r.TasksAddedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "splash_tasks_added_total",
			Help: "Total number of task submissions accepted into a shard queue",
		},
	)

	r.TasksScheduledTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "splash_tasks_scheduled_total",
			Help: "Total number of vertices produced to workers",
		},
	)

	r.SplashRebuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "splash_rebuilds_total",
			Help: "Total number of non-empty splash buffers built per worker",
		},
		[]string{"worker"},
	)

	r.SplashLength = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "splash_length",
			Help:    "Number of vertices in a freshly built splash buffer, after the reverse pass",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	r.PendingVertices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "splash_pending_vertices",
			Help: "Number of vertices currently marked pending in the active set",
		},
	)

	r.SleepingWorkers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "splash_sleeping_workers",
			Help: "Number of workers currently committed to sleep in the terminator",
		},
	)
}
