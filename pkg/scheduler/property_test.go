package scheduler

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-splash/pkg/graph"
)

// TestSchedulerInvariants verifies the scheduler's delivery and shape
// invariants over randomized workloads.
func TestSchedulerInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParametersWithSeed(1729)
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	// Every submitted vertex is delivered exactly once per submission cycle
	properties.Property("exactly-once delivery to quiescence", prop.ForAll(
		func(rows, cols, ncpus int, priority float64) bool {
			g := graph.Grid(rows, cols)
			s := New(g, ncpus)
			s.AddTaskToAll(noopUpdate, priority)
			s.Start()

			counts := make([]int, g.NumVertices())
			done := make(chan []int, ncpus)
			for w := 0; w < ncpus; w++ {
				go func() {
					local := make([]int, g.NumVertices())
					for {
						task, status := s.GetNextTask(w)
						if status == StatusComplete {
							done <- local
							return
						}
						if status == StatusNewTask {
							local[task.Vertex]++
						}
					}
				}()
			}
			for w := 0; w < ncpus; w++ {
				for v, c := range <-done {
					counts[v] += c
				}
			}

			for _, c := range counts {
				if c != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 8),
		gen.IntRange(1, 4),
		gen.Float64Range(0.01, 0.99),
	))

	// Shard confinement and active-set coverage after arbitrary submissions
	properties.Property("queued vertices sit in their home shard with their bit set", prop.ForAll(
		func(n int, vertices []int, priority float64) bool {
			g := graph.BidirectionalChain(n)
			s := New(g, 2)
			s.SetUpdateFunction(noopUpdate)
			for _, v := range vertices {
				s.AddTask(NewTask(v%n, noopUpdate), priority)
			}

			for v := 0; v < n; v++ {
				home := s.vmap[v]
				for shard := range s.pqueues {
					if shard != home && s.pqueues[shard].Contains(v) {
						return false
					}
				}
				if s.pqueues[home].Contains(v) && !s.activeSet.Get(v) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 50),
		gen.SliceOf(gen.IntRange(0, 1<<30)),
		gen.Float64Range(0.01, 5),
	))

	// Splash work bound and palindrome shape
	properties.Property("splash respects the work budget and palindrome shape", prop.ForAll(
		func(rows, cols, splashSize int) bool {
			g := graph.Grid(rows, cols)
			s := New(g, 1)
			s.SetSplashSize(splashSize)
			s.AddTaskToAll(noopUpdate, 0.5)
			s.rebuildSplash(0)

			buf := s.splashes[0]
			if len(buf) == 0 {
				return false
			}

			// Recover the forward half: [c b a b c] -> [a b c]
			forward := buf
			if len(buf) > 1 {
				if len(buf)%2 != 1 {
					return false
				}
				n := (len(buf) + 1) / 2
				for i := range buf {
					if buf[i] != buf[len(buf)-1-i] {
						return false
					}
				}
				forward = buf[n-1:]
			}

			maxWork := 0
			for v := 0; v < g.NumVertices(); v++ {
				if w := s.work(v); w > maxWork {
					maxWork = w
				}
			}
			total := 0
			seen := make(map[int]struct{})
			for _, v := range forward {
				if _, dup := seen[v]; dup {
					return false
				}
				seen[v] = struct{}{}
				total += s.work(v)
			}
			return total <= splashSize+maxWork
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 10),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}
