package scheduler

import "sync"

// terminator detects global quiescence across workers. A worker that finds
// no work enters a sleep critical section, re-polls, and then either cancels
// (work appeared) or commits to sleep. When every worker is simultaneously
// asleep with no fresh work, quiescence is declared to all sleepers.
type terminator struct {
	mu       sync.Mutex
	cond     *sync.Cond
	ncpus    int
	sleeping int
	newWork  []bool // per-worker fresh-work flag
	done     bool
}

func newTerminator(ncpus int) *terminator {
	t := &terminator{
		ncpus:   ncpus,
		newWork: make([]bool, ncpus),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Reset clears all sleep state. Called before workers begin polling.
func (t *terminator) Reset() {
	t.mu.Lock()
	t.sleeping = 0
	t.done = false
	for i := range t.newWork {
		t.newWork[i] = false
	}
	t.mu.Unlock()
}

// Sleeping returns the number of workers currently committed to sleep.
func (t *terminator) Sleeping() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sleeping
}

// NewJob records fresh work for worker w and wakes sleepers.
func (t *terminator) NewJob(w int) {
	t.mu.Lock()
	t.newWork[w] = true
	if t.sleeping > 0 {
		t.cond.Broadcast()
	}
	t.mu.Unlock()
}

// BeginSleepCriticalSection opens the double-check window for worker w. Any
// submission arriving after this point is guaranteed to be observed either by
// the caller's re-poll or by EndSleepCriticalSection.
func (t *terminator) BeginSleepCriticalSection(w int) {
	t.mu.Lock()
	t.newWork[w] = false
	t.mu.Unlock()
}

// CancelSleepCriticalSection abandons the sleep attempt; the worker found
// work during its re-poll.
func (t *terminator) CancelSleepCriticalSection(w int) {
	// The fresh-work flag is left as-is: if a submission raced in, the
	// worker is awake and will see it on its next poll.
}

// EndSleepCriticalSection commits worker w to sleep. It returns true when
// global quiescence is declared, false when the worker should re-poll for
// work.
func (t *terminator) EndSleepCriticalSection(w int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.newWork[w] {
		t.newWork[w] = false
		return false
	}

	t.sleeping++
	if t.sleeping == t.ncpus {
		// A sleeper whose fresh-work flag is set has been woken but has not
		// yet left the count; quiescence waits until it sleeps again.
		fresh := false
		for _, f := range t.newWork {
			fresh = fresh || f
		}
		if !fresh {
			// Last worker asleep with no fresh work anywhere: quiescent.
			t.done = true
			t.cond.Broadcast()
			return true
		}
	}
	for !t.newWork[w] && !t.done {
		t.cond.Wait()
	}
	t.sleeping--
	if t.done {
		return true
	}
	t.newWork[w] = false
	return false
}
