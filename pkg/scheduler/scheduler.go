// Package scheduler implements the splash scheduler for belief-propagation
// style iterative computations over a directed graph. Each worker drains a
// dynamically grown tree of vertices (a "splash") rooted at the highest
// priority pending vertex it owns, traversed forward then backward.
//
// See Gonzalez, Low, Guestrin: "Residual splash for optimally parallelizing
// belief propagation", AISTATS 2009.
package scheduler

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-splash/pkg/bitset"
	"github.com/dd0wney/cluso-splash/pkg/logging"
)

// queueMultiple is the shard oversubscription factor: each worker owns this
// many priority queues.
const queueMultiple = 5

// DefaultSplashSize is the default per-splash work budget in edge-sum units.
const DefaultSplashSize = 100

// Scheduler is a parallel splash scheduler. Task submission and option
// setters are safe for concurrent use. GetNextTask for a given worker id must
// be called from one goroutine at a time, and Start, Restart, SetMonitor and
// SetLogger must not run concurrently with polling.
type Scheduler struct {
	graph Graph
	ncpus int

	monitor Monitor
	logger  logging.Logger

	splashSize atomic.Int64
	aborted    atomic.Bool

	fnMu     sync.RWMutex
	updateFn UpdateFunc

	// One max-queue and lock per shard. A shard lock is held only across
	// that shard's queue operations (in AddTask, together with the active-set
	// update and monitor call); never across graph queries or another shard's
	// lock.
	pqueues []*mutableQueue[int, float64]
	locks   []sync.Mutex
	// vmap[v] is the shard owning vertex v. Precomputed so the mapping can
	// be swapped for a permutation without touching call sites.
	vmap []int

	// Per-worker splash buffers and cursors. Only worker w touches entry w.
	splashes    [][]int
	splashIndex []int
	lastQID     []int
	rngs        []*rand.Rand

	activeSet *bitset.Dense
	term      *terminator
	callbacks []DirectCallback
}

// New constructs a scheduler over g with ncpus workers. The graph is
// borrowed; it must outlive the scheduler and must not change shape while
// the scheduler is in use.
func New(g Graph, ncpus int) *Scheduler {
	if ncpus <= 0 {
		panic(fmt.Sprintf("scheduler: ncpus must be positive, got %d", ncpus))
	}
	nshards := ncpus * queueMultiple
	s := &Scheduler{
		graph:       g,
		ncpus:       ncpus,
		logger:      logging.DefaultLogger().With(logging.Component("splash_scheduler")),
		pqueues:     make([]*mutableQueue[int, float64], nshards),
		locks:       make([]sync.Mutex, nshards),
		vmap:        make([]int, g.NumVertices()),
		splashes:    make([][]int, ncpus),
		splashIndex: make([]int, ncpus),
		lastQID:     make([]int, ncpus),
		rngs:        make([]*rand.Rand, ncpus),
		activeSet:   bitset.NewDense(g.NumVertices()),
		term:        newTerminator(ncpus),
		callbacks:   make([]DirectCallback, ncpus),
	}
	s.splashSize.Store(DefaultSplashSize)
	for i := range s.pqueues {
		s.pqueues[i] = newMutableQueue[int, float64]()
	}
	for v := range s.vmap {
		s.vmap[v] = v % nshards
	}
	for w := 0; w < ncpus; w++ {
		// Deterministic per-worker seed so test runs are reproducible; the
		// shuffle decorrelates workers, it is not security relevant.
		s.rngs[w] = rand.New(rand.NewSource(int64(w)*0x9e3779b9 + 1))
		s.callbacks[w] = DirectCallback{sched: s, worker: w}
	}
	return s
}

// SetMonitor installs a monitor hook. Must be called before workers start
// polling.
func (s *Scheduler) SetMonitor(m Monitor) { s.monitor = m }

// SetLogger replaces the scheduler's logger.
func (s *Scheduler) SetLogger(l logging.Logger) { s.logger = l }

// NCPUs returns the configured worker count.
func (s *Scheduler) NCPUs() int { return s.ncpus }

// Pending returns a snapshot count of vertices currently marked pending in
// the active set.
func (s *Scheduler) Pending() int { return s.activeSet.Count() }

// SleepingWorkers returns the number of workers currently committed to
// sleep in the terminator.
func (s *Scheduler) SleepingWorkers() int { return s.term.Sleeping() }

// Start builds an initial splash per worker and resets the terminator.
// Called once before workers begin polling.
func (s *Scheduler) Start() {
	for w := 0; w < s.ncpus; w++ {
		s.rebuildSplash(w)
	}
	s.term.Reset()
}

// AddTask submits a task with the given priority. The task's function must
// equal the configured update function and its vertex must be in range;
// violations are engine misuse and panic.
func (s *Scheduler) AddTask(task Task, priority float64) {
	if !sameFn(task.Fn, s.UpdateFunction()) {
		panic("scheduler: task function does not match the configured update function")
	}
	v := task.Vertex
	if v < 0 || v >= s.graph.NumVertices() {
		panic(fmt.Sprintf("scheduler: vertex %d out of range [0,%d)", v, s.graph.NumVertices()))
	}
	shard := s.vmap[v]

	s.locks[shard].Lock()
	wasPresent := s.activeSet.SetBit(v)
	// Insert/promote unless the vertex is already owned by some splash: bit
	// set but absent from its queue means it sits in a worker's buffer
	// between queue removal and active-set clear, and will be processed
	// once by that owner. Re-queuing would break at-most-once accounting.
	if !wasPresent || s.pqueues[shard].Contains(v) {
		s.pqueues[shard].InsertOrPromoteMax(v, priority)
		if s.monitor != nil {
			s.monitor.SchedulerTaskAdded(task, priority)
		}
	}
	s.locks[shard].Unlock()

	s.term.NewJob(shard / queueMultiple)
}

// AddTasks submits every vertex in vs with the given function and priority.
func (s *Scheduler) AddTasks(vs []int, fn UpdateFunc, priority float64) {
	for _, v := range vs {
		s.AddTask(NewTask(v, fn), priority)
	}
}

// AddTaskToAll sets the update function and submits every vertex with the
// given priority.
func (s *Scheduler) AddTaskToAll(fn UpdateFunc, priority float64) {
	s.SetUpdateFunction(fn)
	for v := 0; v < s.graph.NumVertices(); v++ {
		s.AddTask(NewTask(v, fn), priority)
	}
}

// Callback returns the submission callback for worker w.
func (s *Scheduler) Callback(w int) *DirectCallback {
	s.checkWorker(w)
	return &s.callbacks[w]
}

// GetNextTask returns the next scheduled task for worker w. It blocks while
// the system is active but worker w has nothing to do, returns StatusWaiting
// when aborted, and returns StatusComplete on global quiescence.
func (s *Scheduler) GetNextTask(w int) (Task, Status) {
	s.checkWorker(w)
	for {
		task, status := s.nextTaskFromSplash(w)
		if status != StatusWaiting {
			return task, status
		}
		if s.aborted.Load() {
			return Task{}, StatusWaiting
		}
		// Double-check inside the terminator's critical section: a
		// submission racing with the WAITING observation is caught either
		// by the re-poll or by the terminator's fresh-work flag.
		s.term.BeginSleepCriticalSection(w)
		task, status = s.nextTaskFromSplash(w)
		if status != StatusWaiting {
			s.term.CancelSleepCriticalSection(w)
			return task, status
		}
		if s.aborted.Load() {
			s.term.CancelSleepCriticalSection(w)
			return Task{}, StatusWaiting
		}
		if s.term.EndSleepCriticalSection(w) {
			return Task{}, StatusComplete
		}
	}
}

// CompletedTask is a no-op; the splash scheduler does not track completions.
// Kept for interface parity with other schedulers.
func (s *Scheduler) CompletedTask(w int, task Task) {}

// ScopedModifications is a no-op, kept for interface parity.
func (s *Scheduler) ScopedModifications(w int, root int, edges []int) {}

// UpdateState is a no-op, kept for interface parity.
func (s *Scheduler) UpdateState(w int, vs []int, es []int) {}

// Abort halts draining: workers see StatusWaiting until Restart. Queued
// tasks survive and are re-delivered after Restart.
func (s *Scheduler) Abort() {
	s.aborted.Store(true)
	// Wake committed sleepers so blocked GetNextTask calls observe the
	// abort instead of waiting for quiescence.
	for w := 0; w < s.ncpus; w++ {
		s.term.NewJob(w)
	}
}

// Restart clears every splash buffer and cursor and clears the abort flag.
// The shard queues and active set are left untouched.
func (s *Scheduler) Restart() {
	for w := 0; w < s.ncpus; w++ {
		s.splashes[w] = s.splashes[w][:0]
		s.splashIndex[w] = 0
	}
	s.aborted.Store(false)
}

// SetSplashSize sets the per-splash work budget in edge-sum units.
func (s *Scheduler) SetSplashSize(size int) {
	s.splashSize.Store(int64(size))
}

// SplashSize returns the current per-splash work budget.
func (s *Scheduler) SplashSize() int {
	return int(s.splashSize.Load())
}

// SetUpdateFunction sets the single update function shared by all tasks.
func (s *Scheduler) SetUpdateFunction(fn UpdateFunc) {
	s.fnMu.Lock()
	s.updateFn = fn
	s.fnMu.Unlock()
}

// UpdateFunction returns the configured update function.
func (s *Scheduler) UpdateFunction() UpdateFunc {
	s.fnMu.RLock()
	defer s.fnMu.RUnlock()
	return s.updateFn
}

func (s *Scheduler) checkWorker(w int) {
	if w < 0 || w >= s.ncpus {
		panic(fmt.Sprintf("scheduler: worker %d out of range [0,%d)", w, s.ncpus))
	}
}
