package metrics

import (
	"strconv"
	"time"

	"github.com/dd0wney/cluso-splash/pkg/scheduler"
)

// RecordUpdate records one applied update function with its duration
func (r *Registry) RecordUpdate(worker int, duration time.Duration) {
	r.UpdatesAppliedTotal.WithLabelValues(strconv.Itoa(worker)).Inc()
	r.UpdateDuration.Observe(duration.Seconds())
}

// SetPendingVertices updates the pending-vertex gauge
func (r *Registry) SetPendingVertices(n int) {
	r.PendingVertices.Set(float64(n))
}

// SetSleepingWorkers updates the sleeping-workers gauge
func (r *Registry) SetSleepingWorkers(n int) {
	r.SleepingWorkers.Set(float64(n))
}

// SchedulerMonitor adapts a Registry to the scheduler's Monitor interface
type SchedulerMonitor struct {
	reg *Registry
}

// NewSchedulerMonitor creates a monitor recording into reg
func NewSchedulerMonitor(reg *Registry) *SchedulerMonitor {
	return &SchedulerMonitor{reg: reg}
}

// SchedulerTaskAdded records an accepted submission
func (m *SchedulerMonitor) SchedulerTaskAdded(task scheduler.Task, priority float64) {
	m.reg.TasksAddedTotal.Inc()
}

// SchedulerTaskScheduled records a vertex produced to a worker
func (m *SchedulerMonitor) SchedulerTaskScheduled(task scheduler.Task, weight float64) {
	m.reg.TasksScheduledTotal.Inc()
}

// SchedulerSplashRebuilt records a freshly built splash buffer
func (m *SchedulerMonitor) SchedulerSplashRebuilt(worker, length int) {
	m.reg.SplashRebuildsTotal.WithLabelValues(strconv.Itoa(worker)).Inc()
	m.reg.SplashLength.Observe(float64(length))
}
