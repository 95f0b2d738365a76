// Package bp implements residual belief propagation for binary pairwise
// models, the workload the splash scheduler was designed around. Each vertex
// update recomputes the vertex's outgoing messages; neighbors whose incoming
// message moved by more than the tolerance are rescheduled with the residual
// as priority.
package bp

import (
	"fmt"
	"math"
	"sync"

	"github.com/dd0wney/cluso-splash/pkg/graph"
	"github.com/dd0wney/cluso-splash/pkg/scheduler"
)

// Model is a binary pairwise model over a directed graph. The graph must
// contain both directions of every pairwise interaction; the message for
// edge e flows from Source(e) to Target(e).
type Model struct {
	g       *graph.Graph
	nodePot [][2]float64
	edgePot [2][2]float64

	msgMu sync.RWMutex
	msgs  [][2]float64

	tolerance float64
	fn        scheduler.UpdateFunc
}

// New creates a model with the given unary potentials and a symmetric
// coupling: ψ(x,y) = e^coupling when x == y, 1 otherwise. Messages start
// uniform.
func New(g *graph.Graph, nodePot [][2]float64, coupling, tolerance float64) *Model {
	if len(nodePot) != g.NumVertices() {
		panic(fmt.Sprintf("bp: %d node potentials for %d vertices", len(nodePot), g.NumVertices()))
	}
	same := math.Exp(coupling)
	m := &Model{
		g:       g,
		nodePot: nodePot,
		edgePot: [2][2]float64{{same, 1}, {1, same}},
		msgs:    make([][2]float64, g.NumEdges()),

		tolerance: tolerance,
	}
	for e := range m.msgs {
		m.msgs[e] = [2]float64{0.5, 0.5}
	}
	m.fn = func(uc scheduler.UpdateContext) { m.update(uc) }
	return m
}

// Fn returns the model's update function. The same function value is
// returned on every call, as the scheduler requires.
func (m *Model) Fn() scheduler.UpdateFunc { return m.fn }

func (m *Model) message(e int) [2]float64 {
	m.msgMu.RLock()
	defer m.msgMu.RUnlock()
	return m.msgs[e]
}

func (m *Model) setMessage(e int, msg [2]float64) {
	m.msgMu.Lock()
	m.msgs[e] = msg
	m.msgMu.Unlock()
}

// update recomputes every outgoing message of the vertex and reschedules
// targets whose message residual exceeds the tolerance.
func (m *Model) update(uc scheduler.UpdateContext) {
	v := uc.Vertex
	for _, e := range m.g.OutEdgeIDs(v) {
		t := m.g.Target(e)

		// Cavity distribution: unary potential times all incoming messages
		// except the one arriving from t.
		cavity := m.nodePot[v]
		for _, ie := range m.g.InEdgeIDs(v) {
			if m.g.Source(ie) == t {
				continue
			}
			in := m.message(ie)
			cavity[0] *= in[0]
			cavity[1] *= in[1]
		}

		var out [2]float64
		for xt := 0; xt < 2; xt++ {
			for xv := 0; xv < 2; xv++ {
				out[xt] += cavity[xv] * m.edgePot[xv][xt]
			}
		}
		if z := out[0] + out[1]; z > 0 {
			out[0] /= z
			out[1] /= z
		}

		old := m.message(e)
		residual := math.Abs(out[0]-old[0]) + math.Abs(out[1]-old[1])
		m.setMessage(e, out)

		if residual > m.tolerance && uc.Callback != nil {
			uc.Callback.AddTask(t, m.fn, residual)
		}
	}
}

// Belief returns the normalized marginal of vertex v under the current
// messages.
func (m *Model) Belief(v int) [2]float64 {
	belief := m.nodePot[v]
	for _, e := range m.g.InEdgeIDs(v) {
		in := m.message(e)
		belief[0] *= in[0]
		belief[1] *= in[1]
	}
	if z := belief[0] + belief[1]; z > 0 {
		belief[0] /= z
		belief[1] /= z
	}
	return belief
}

// Tolerance returns the residual threshold below which no rescheduling
// happens.
func (m *Model) Tolerance() float64 { return m.tolerance }
