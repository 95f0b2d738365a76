package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-splash/pkg/graph"
	"github.com/dd0wney/cluso-splash/pkg/metrics"
	"github.com/dd0wney/cluso-splash/pkg/scheduler"
)

func TestRunDeliversEveryVertexOnce(t *testing.T) {
	g := graph.Grid(10, 10)
	s := scheduler.New(g, 4)

	var mu sync.Mutex
	counts := make(map[int]int)
	fn := func(uc scheduler.UpdateContext) {
		mu.Lock()
		counts[uc.Vertex]++
		mu.Unlock()
	}
	s.AddTaskToAll(fn, 0.5)

	e := New(s, nil)
	require.NoError(t, e.Run(context.Background()))

	require.Len(t, counts, g.NumVertices())
	for v, c := range counts {
		require.Equal(t, 1, c, "vertex %d updated %d times", v, c)
	}
	assert.Equal(t, uint64(g.NumVertices()), e.UpdatesApplied())
	assert.NotEmpty(t, e.RunID())
}

func TestCallbackResubmissionIsDelivered(t *testing.T) {
	// Vertices 0 and 1 reschedule each other through the worker callback
	// until 20 updates have run; every resubmission must be delivered.
	g := graph.BidirectionalChain(2)
	s := scheduler.New(g, 2)

	const rounds = 20
	var mu sync.Mutex
	hits := make(map[int]int)
	var fn scheduler.UpdateFunc
	fn = func(uc scheduler.UpdateContext) {
		mu.Lock()
		hits[uc.Vertex]++
		total := hits[0] + hits[1]
		mu.Unlock()
		if total < rounds {
			uc.Callback.AddTask(1-uc.Vertex, fn, 0.9)
		}
	}
	s.SetUpdateFunction(fn)
	s.AddTasks([]int{0}, fn, 0.9)

	e := New(s, nil)
	require.NoError(t, e.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, hits[0]+hits[1], rounds)
}

func TestRunWithMetrics(t *testing.T) {
	g := graph.Grid(5, 5)
	s := scheduler.New(g, 2)
	reg := metrics.NewRegistry()
	s.SetMonitor(metrics.NewSchedulerMonitor(reg))

	fn := func(uc scheduler.UpdateContext) {}
	s.AddTaskToAll(fn, 0.5)

	e := New(s, reg)
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(g.NumVertices()), e.UpdatesApplied())
}

func TestContextCancellationAborts(t *testing.T) {
	g := graph.Grid(50, 50)
	s := scheduler.New(g, 2)

	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	var once sync.Once
	fn := func(uc scheduler.UpdateContext) {
		once.Do(func() {
			cancel()
			close(block)
		})
	}
	s.AddTaskToAll(fn, 0.5)

	e := New(s, nil)
	err := e.Run(ctx)
	<-block
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, int(e.UpdatesApplied()), g.NumVertices(),
		"cancellation should stop the run before all updates apply")
}

func TestRestartAfterAbortResumesDelivery(t *testing.T) {
	g := graph.NewBuilder(200).Build()
	s := scheduler.New(g, 2)

	var count sync.Map
	fn := func(uc scheduler.UpdateContext) {
		c, _ := count.LoadOrStore(uc.Vertex, new(int))
		*(c.(*int))++
		time.Sleep(time.Microsecond)
	}
	s.AddTaskToAll(fn, 0.5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	e := New(s, nil)
	_ = e.Run(ctx)

	s.Restart()
	require.NoError(t, New(s, nil).Run(context.Background()))

	delivered := 0
	count.Range(func(_, c any) bool {
		require.Equal(t, 1, *(c.(*int)))
		delivered++
		return true
	})
	require.Equal(t, 200, delivered, "pending tasks survive abort and are re-delivered")
}
