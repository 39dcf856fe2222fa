// Package graph holds the weighted fusion graph over observation (or
// variable) pairs that drives a single path-tracking run.
package graph

import "fmt"

// Edge is one entry of the fusion graph: a pair of 1-based point indices
// and a positive fusion weight.
type Edge struct {
	L, M int
	W    float64
}

// Graph is an ordered, immutable edge list together with the index tables
// a path kernel needs to assemble D, Dᵀ and the per-edge proximal blocks
// without ever materializing D as a dense matrix.
type Graph struct {
	n, p  int
	edges []Edge

	// e1[i], e2[i] are the starting offsets (in an n·p vector) of the
	// p-block belonging to the left/right endpoint of edge i.
	e1, e2 []int
}

// New validates edges and builds the index tables. n and p are the point
// count and the per-point block size (the number of variables for a
// column graph over observations, the number of observations for a row
// graph over variables).
func New(n, p int, edges []Edge) (*Graph, error) {
	if n <= 0 || p <= 0 {
		return nil, fmt.Errorf("graph: n and p must be positive, got n=%d p=%d", n, p)
	}
	seen := make(map[[2]int]bool, len(edges))
	e1 := make([]int, len(edges))
	e2 := make([]int, len(edges))
	for i, e := range edges {
		if e.L < 1 || e.L > n || e.M < 1 || e.M > n || e.L >= e.M {
			return nil, fmt.Errorf("graph: edge %d has invalid endpoints (l=%d, m=%d, n=%d)", i, e.L, e.M, n)
		}
		if e.W <= 0 {
			return nil, fmt.Errorf("graph: edge %d has non-positive weight %g", i, e.W)
		}
		key := [2]int{e.L, e.M}
		if seen[key] {
			return nil, fmt.Errorf("graph: duplicate edge (%d, %d)", e.L, e.M)
		}
		seen[key] = true
		e1[i] = (e.L - 1) * p
		e2[i] = (e.M - 1) * p
	}
	g := &Graph{
		n:     n,
		p:     p,
		edges: append([]Edge(nil), edges...),
		e1:    e1,
		e2:    e2,
	}
	return g, nil
}

// N returns the number of points (observations for a column graph,
// variables for a row graph).
func (g *Graph) N() int { return g.n }

// P returns the per-point block size.
func (g *Graph) P() int { return g.p }

// NumEdges returns |E|.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Edges returns the edge list in its fixed storage order. Callers must not
// mutate the returned slice.
func (g *Graph) Edges() []Edge { return g.edges }

// Weight returns the weight of edge i.
func (g *Graph) Weight(i int) float64 { return g.edges[i].W }

// Block returns the [start, end) range of the i-th edge's p-block inside a
// length-|E|·p vector.
func (g *Graph) Block(i int) (start, end int) {
	start = i * g.p
	return start, start + g.p
}

// E1 returns the [start, end) range of uₗᵢ inside a length-n·p vector.
func (g *Graph) E1(i int) (start, end int) {
	start = g.e1[i]
	return start, start + g.p
}

// E2 returns the [start, end) range of uₘᵢ inside a length-n·p vector.
func (g *Graph) E2(i int) (start, end int) {
	start = g.e2[i]
	return start, start + g.p
}

// Adjacency returns, for each point index (0-based), the list of edge
// indices touching it. Used by Connected's traversal of the fusion graph.
func (g *Graph) Adjacency() [][]int {
	adj := make([][]int, g.n)
	for i, e := range g.edges {
		adj[e.L-1] = append(adj[e.L-1], i)
		adj[e.M-1] = append(adj[e.M-1], i)
	}
	return adj
}

// Connected reports whether the graph is a single connected component over
// its n points.
func (g *Graph) Connected() bool {
	if g.n == 0 {
		return true
	}
	adj := g.Adjacency()
	visited := make([]bool, g.n)
	stack := []int{0}
	visited[0] = true
	count := 1
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ei := range adj[v] {
			e := g.edges[ei]
			other := e.M - 1
			if other == v {
				other = e.L - 1
			}
			if !visited[other] {
				visited[other] = true
				count++
				stack = append(stack, other)
			}
		}
	}
	return count == g.n
}
