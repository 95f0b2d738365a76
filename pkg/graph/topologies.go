package graph

// Chain builds a directed chain 0→1→…→n-1.
func Chain(n int) *Graph {
	b := NewBuilder(n)
	for i := 0; i+1 < n; i++ {
		b.AddEdge(i, i+1)
	}
	return b.Build()
}

// BidirectionalChain builds a chain with edges in both directions between
// consecutive vertices, the shape of a pairwise model on a line.
func BidirectionalChain(n int) *Graph {
	b := NewBuilder(n)
	for i := 0; i+1 < n; i++ {
		b.AddEdge(i, i+1)
		b.AddEdge(i+1, i)
	}
	return b.Build()
}

// Grid builds a rows×cols lattice with edges in both directions between
// 4-neighbors. Vertex (r,c) has id r*cols+c.
func Grid(rows, cols int) *Graph {
	b := NewBuilder(rows * cols)
	id := func(r, c int) int { return r*cols + c }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				b.AddEdge(id(r, c), id(r, c+1))
				b.AddEdge(id(r, c+1), id(r, c))
			}
			if r+1 < rows {
				b.AddEdge(id(r, c), id(r+1, c))
				b.AddEdge(id(r+1, c), id(r, c))
			}
		}
	}
	return b.Build()
}
