// Package engine runs scheduler workers. It owns one goroutine per
// configured cpu, each polling the scheduler for tasks and applying the
// update function until the scheduler declares global quiescence.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-splash/pkg/logging"
	"github.com/dd0wney/cluso-splash/pkg/metrics"
	"github.com/dd0wney/cluso-splash/pkg/scheduler"
)

// abortPollInterval paces re-polling while the scheduler is aborted.
const abortPollInterval = time.Millisecond

// Engine drives a splash scheduler with ncpus workers.
type Engine struct {
	sched  *scheduler.Scheduler
	ncpus  int
	logger logging.Logger
	reg    *metrics.Registry

	runID   string
	updates atomic.Uint64
}

// New creates an engine over sched. The metrics registry may be nil.
func New(sched *scheduler.Scheduler, reg *metrics.Registry) *Engine {
	runID := uuid.NewString()
	return &Engine{
		sched: sched,
		ncpus: sched.NCPUs(),
		logger: logging.DefaultLogger().With(
			logging.Component("engine"),
			logging.String("run_id", runID),
		),
		reg:   reg,
		runID: runID,
	}
}

// RunID returns the unique id of this engine run.
func (e *Engine) RunID() string { return e.runID }

// UpdatesApplied returns the total number of update functions applied so far.
func (e *Engine) UpdatesApplied() uint64 { return e.updates.Load() }

// Run starts the scheduler and blocks until every worker observes
// completion or the context is canceled. Cancellation aborts the scheduler;
// pending tasks survive and are re-delivered after Restart and a new Run.
func (e *Engine) Run(ctx context.Context) error {
	e.sched.Start()

	stop := context.AfterFunc(ctx, func() {
		e.sched.Abort()
	})
	defer stop()

	timer := logging.StartTimer(e.logger, "engine run finished",
		logging.Count(e.ncpus))

	g := new(errgroup.Group)
	for w := 0; w < e.ncpus; w++ {
		g.Go(func() error {
			return e.workerLoop(ctx, w)
		})
	}
	err := g.Wait()
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End()
	return nil
}

func (e *Engine) workerLoop(ctx context.Context, w int) error {
	if e.reg != nil {
		e.reg.WorkersRunning.Inc()
		defer e.reg.WorkersRunning.Dec()
	}
	callback := e.sched.Callback(w)
	for {
		task, status := e.sched.GetNextTask(w)
		switch status {
		case scheduler.StatusNewTask:
			start := time.Now()
			task.Fn(scheduler.UpdateContext{
				Vertex:   task.Vertex,
				Worker:   w,
				Callback: callback,
			})
			e.sched.CompletedTask(w, task)
			e.updates.Add(1)
			if e.reg != nil {
				e.reg.RecordUpdate(w, time.Since(start))
				e.reg.SetPendingVertices(e.sched.Pending())
				e.reg.SetSleepingWorkers(e.sched.SleepingWorkers())
			}
		case scheduler.StatusComplete:
			e.logger.Debug("worker observed completion", logging.WorkerID(w))
			return nil
		case scheduler.StatusWaiting:
			// Only surfaced while aborted.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(abortPollInterval):
			}
		}
	}
}
