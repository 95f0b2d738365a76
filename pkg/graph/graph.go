// Package graph provides the immutable directed graph container consumed by
// the splash scheduler. Vertices are dense integers in [0, NumVertices);
// edges are dense integers in [0, NumEdges) assigned in insertion order.
package graph

import "fmt"

// Graph is an immutable directed graph with per-vertex in/out edge lists.
type Graph struct {
	src []int // src[e] is the source vertex of edge e
	dst []int // dst[e] is the target vertex of edge e
	in  [][]int
	out [][]int
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.in) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.src) }

// InEdgeIDs returns the ids of edges whose target is v. The returned slice
// is owned by the graph and must not be modified.
func (g *Graph) InEdgeIDs(v int) []int { return g.in[v] }

// OutEdgeIDs returns the ids of edges whose source is v. The returned slice
// is owned by the graph and must not be modified.
func (g *Graph) OutEdgeIDs(v int) []int { return g.out[v] }

// Source returns the source vertex of edge e.
func (g *Graph) Source(e int) int { return g.src[e] }

// Target returns the target vertex of edge e.
func (g *Graph) Target(e int) int { return g.dst[e] }

// EdgeID returns the id of the edge from u to v, or -1 if none exists.
func (g *Graph) EdgeID(u, v int) int {
	for _, e := range g.out[u] {
		if g.dst[e] == v {
			return e
		}
	}
	return -1
}

// Builder accumulates vertices and edges and freezes them into a Graph.
type Builder struct {
	n   int
	src []int
	dst []int
}

// NewBuilder creates a builder starting with n vertices.
func NewBuilder(n int) *Builder {
	if n < 0 {
		panic(fmt.Sprintf("graph: negative vertex count %d", n))
	}
	return &Builder{n: n}
}

// AddVertex adds a vertex and returns its id.
func (b *Builder) AddVertex() int {
	b.n++
	return b.n - 1
}

// AddEdge adds a directed edge from u to v and returns its id.
func (b *Builder) AddEdge(u, v int) int {
	if u < 0 || u >= b.n || v < 0 || v >= b.n {
		panic(fmt.Sprintf("graph: edge (%d,%d) out of range [0,%d)", u, v, b.n))
	}
	b.src = append(b.src, u)
	b.dst = append(b.dst, v)
	return len(b.src) - 1
}

// Build freezes the accumulated vertices and edges into an immutable Graph.
func (b *Builder) Build() *Graph {
	g := &Graph{
		src: b.src,
		dst: b.dst,
		in:  make([][]int, b.n),
		out: make([][]int, b.n),
	}
	inDeg := make([]int, b.n)
	outDeg := make([]int, b.n)
	for e := range g.src {
		outDeg[g.src[e]]++
		inDeg[g.dst[e]]++
	}
	for v := 0; v < b.n; v++ {
		if inDeg[v] > 0 {
			g.in[v] = make([]int, 0, inDeg[v])
		}
		if outDeg[v] > 0 {
			g.out[v] = make([]int, 0, outDeg[v])
		}
	}
	for e := range g.src {
		g.out[g.src[e]] = append(g.out[g.src[e]], e)
		g.in[g.dst[e]] = append(g.in[g.dst[e]], e)
	}
	return g
}
