package scheduler

import "golang.org/x/exp/constraints"

// mutableQueue is a max-priority queue with mutable priorities and O(log n)
// removal by key. It is not safe for concurrent use; each shard queue is
// guarded by its shard lock.
type mutableQueue[K comparable, P constraints.Ordered] struct {
	entries []queueEntry[K, P]
	index   map[K]int // key -> position in entries
}

type queueEntry[K comparable, P constraints.Ordered] struct {
	key      K
	priority P
}

func newMutableQueue[K comparable, P constraints.Ordered]() *mutableQueue[K, P] {
	return &mutableQueue[K, P]{index: make(map[K]int)}
}

// Len returns the number of queued entries.
func (q *mutableQueue[K, P]) Len() int { return len(q.entries) }

// Empty reports whether the queue holds no entries.
func (q *mutableQueue[K, P]) Empty() bool { return len(q.entries) == 0 }

// Contains reports whether key k is queued.
func (q *mutableQueue[K, P]) Contains(k K) bool {
	_, ok := q.index[k]
	return ok
}

// Priority returns the stored priority for k.
func (q *mutableQueue[K, P]) Priority(k K) (P, bool) {
	var zero P
	i, ok := q.index[k]
	if !ok {
		return zero, false
	}
	return q.entries[i].priority, true
}

// Top returns the maximum-priority entry without removing it. The queue must
// be nonempty.
func (q *mutableQueue[K, P]) Top() (K, P) {
	return q.entries[0].key, q.entries[0].priority
}

// Pop removes and returns the maximum-priority entry. The queue must be
// nonempty.
func (q *mutableQueue[K, P]) Pop() (K, P) {
	top := q.entries[0]
	last := len(q.entries) - 1
	q.swap(0, last)
	q.entries = q.entries[:last]
	delete(q.index, top.key)
	if last > 0 {
		q.siftDown(0)
	}
	return top.key, top.priority
}

// InsertOrPromoteMax inserts k with priority p, or if k is already queued
// raises its stored priority to max(old, p). Priorities are never lowered.
func (q *mutableQueue[K, P]) InsertOrPromoteMax(k K, p P) {
	if i, ok := q.index[k]; ok {
		if p > q.entries[i].priority {
			q.entries[i].priority = p
			q.siftUp(i)
		}
		return
	}
	q.entries = append(q.entries, queueEntry[K, P]{key: k, priority: p})
	q.index[k] = len(q.entries) - 1
	q.siftUp(len(q.entries) - 1)
}

// Remove deletes k from the queue, reporting whether it was present.
func (q *mutableQueue[K, P]) Remove(k K) bool {
	i, ok := q.index[k]
	if !ok {
		return false
	}
	last := len(q.entries) - 1
	q.swap(i, last)
	q.entries = q.entries[:last]
	delete(q.index, k)
	if i < last {
		q.siftDown(i)
		q.siftUp(i)
	}
	return true
}

func (q *mutableQueue[K, P]) swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	q.index[q.entries[i].key] = i
	q.index[q.entries[j].key] = j
}

func (q *mutableQueue[K, P]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.entries[parent].priority >= q.entries[i].priority {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *mutableQueue[K, P]) siftDown(i int) {
	n := len(q.entries)
	for {
		largest := i
		if l := 2*i + 1; l < n && q.entries[l].priority > q.entries[largest].priority {
			largest = l
		}
		if r := 2*i + 2; r < n && q.entries[r].priority > q.entries[largest].priority {
			largest = r
		}
		if largest == i {
			return
		}
		q.swap(i, largest)
		i = largest
	}
}
