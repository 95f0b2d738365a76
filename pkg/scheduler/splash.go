package scheduler

import "math/rand"

// work estimates the compute cost of updating v as its total degree.
func (s *Scheduler) work(v int) int {
	return len(s.graph.InEdgeIDs(v)) + len(s.graph.OutEdgeIDs(v))
}

// getTop pops the highest-priority vertex from one of worker w's shards,
// probing them round-robin from the position after the last successful probe.
func (s *Scheduler) getTop(w int) (root int, priority float64, ok bool) {
	for i := 0; i < queueMultiple; i++ {
		j := (i + s.lastQID[w]) % queueMultiple
		shard := w*queueMultiple + j
		s.locks[shard].Lock()
		if !s.pqueues[shard].Empty() {
			root, priority = s.pqueues[shard].Pop()
			s.locks[shard].Unlock()
			s.lastQID[w] = j + 1
			return root, priority, true
		}
		s.locks[shard].Unlock()
	}
	s.lastQID[w] = 0
	return 0, 0, false
}

// rebuildSplash replaces worker w's splash buffer with a new bounded BFS
// tree rooted at the highest-priority vertex among w's shards. The buffer is
// left empty when no root is available.
func (s *Scheduler) rebuildSplash(w int) {
	splash := s.splashes[w][:0]
	s.splashIndex[w] = 0
	defer func() { s.splashes[w] = splash }()

	root, rootPriority, found := s.getTop(w)
	if !found {
		return
	}

	splashSize := s.SplashSize()
	rng := s.rngs[w]

	splash = append(splash, root)
	splashWork := s.work(root)
	// Urgent roots terminate growth immediately and skip the reverse pass.
	if rootPriority > 1 {
		splashWork = splashSize
	}

	visited := map[int]struct{}{root: {}}
	var bfsQueue []int

	// Seed the frontier with the root's in-neighbors in shuffled order. The
	// shuffle desynchronizes workers growing splashes near the same region.
	inEdges := shuffledEdges(rng, s.graph.InEdgeIDs(root))
	for _, e := range inEdges {
		neighbor := s.graph.Source(e)
		bfsQueue = append(bfsQueue, neighbor)
		visited[neighbor] = struct{}{}
	}

	for splashWork < splashSize && len(bfsQueue) > 0 {
		v := bfsQueue[0]
		bfsQueue = bfsQueue[1:]
		vertexWork := s.work(v)
		// An overweight vertex is skipped entirely; it stays in its queue
		// and remains selectable by a later splash.
		if vertexWork+splashWork > splashSize {
			continue
		}
		shard := s.vmap[v]
		s.locks[shard].Lock()
		owned := s.pqueues[shard].Remove(v)
		s.locks[shard].Unlock()
		// Absent from its queue means another splash already owns it.
		if !owned {
			continue
		}
		splash = append(splash, v)
		splashWork += vertexWork

		inEdges := shuffledEdges(rng, s.graph.InEdgeIDs(v))
		for _, e := range inEdges {
			neighbor := s.graph.Source(e)
			if _, seen := visited[neighbor]; !seen {
				visited[neighbor] = struct{}{}
				bfsQueue = append(bfsQueue, neighbor)
			}
		}
	}

	// Reverse pass: turn [a b c] into the palindrome [c b a b c], a
	// down-sweep to the root followed by an up-sweep back out.
	n := len(splash)
	if n > 1 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			splash[i], splash[j] = splash[j], splash[i]
		}
		for i := n - 2; i >= 0; i-- {
			splash = append(splash, splash[i])
		}
	}

	if s.monitor != nil {
		s.monitor.SchedulerSplashRebuilt(w, len(splash))
	}
}

// shuffledEdges copies edge ids and shuffles them with the worker's rng.
func shuffledEdges(rng *rand.Rand, edges []int) []int {
	shuffled := make([]int, len(edges))
	copy(shuffled, edges)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// nextTaskFromSplash advances worker w's splash cursor to the next vertex
// still in the active set, rebuilding the splash whenever it drains.
func (s *Scheduler) nextTaskFromSplash(w int) (Task, Status) {
	for {
		if s.aborted.Load() {
			return Task{}, StatusWaiting
		}
		if s.splashIndex[w] >= len(s.splashes[w]) {
			s.rebuildSplash(w)
		}
		if s.splashIndex[w] >= len(s.splashes[w]) {
			return Task{}, StatusWaiting
		}
		for s.splashIndex[w] < len(s.splashes[w]) {
			v := s.splashes[w][s.splashIndex[w]]
			s.splashIndex[w]++
			// Best-effort removal: v may still be queued if it was
			// re-submitted while inside this splash buffer.
			shard := s.vmap[v]
			s.locks[shard].Lock()
			s.pqueues[shard].Remove(v)
			s.locks[shard].Unlock()
			// The clear decides delivery: the second palindrome occurrence
			// of a vertex finds the bit already cleared and is suppressed.
			if s.activeSet.ClearBit(v) {
				task := NewTask(v, s.UpdateFunction())
				if s.monitor != nil {
					s.monitor.SchedulerTaskScheduled(task, 1.0)
				}
				return task, StatusNewTask
			}
		}
	}
}
