package linalg

import "fusionpath/internal/graph"

// Operator wraps a fusion Graph with the implicit differencing operator D
// and the cached factorization of A = I + ρ·DᵀD.
//
// D is never materialized as a matrix: D(u) and Dᵀ(v) are computed
// directly from the graph's edge list. A itself decomposes into p
// identical n×n blocks (one per coordinate) because no edge mixes two
// different coordinates; Operator factors that single n×n block once
// and reuses it for every coordinate column during the U-step.
type Operator struct {
	g   *graph.Graph
	rho float64
	lu  *LU
}

// D writes, for each edge i, u[l_i] - u[m_i] into the i-th p-block of out.
// u has length n·p, out has length |E|·p.
func D(g *graph.Graph, u, out []float64) {
	p := g.P()
	for i := range g.Edges() {
		os, oe := g.Block(i)
		s1, _ := g.E1(i)
		s2, _ := g.E2(i)
		for j := 0; j < p; j++ {
			out[os+j] = u[s1+j] - u[s2+j]
		}
		_ = oe
	}
}

// Dt adds vᵢ into the lᵢ block and subtracts it from the mᵢ block of out.
// out must be zeroed by the caller first if an additive accumulation is
// not desired. v has length |E|·p, out has length n·p.
func Dt(g *graph.Graph, v, out []float64) {
	p := g.P()
	for i := range g.Edges() {
		os, _ := g.Block(i)
		s1, _ := g.E1(i)
		s2, _ := g.E2(i)
		for j := 0; j < p; j++ {
			out[s1+j] += v[os+j]
			out[s2+j] -= v[os+j]
		}
	}
}

// Factor builds A's single n×n coordinate block (I + ρ·L, where L is the
// weighted graph Laplacian implied by the fusion graph) and factors it.
func Factor(g *graph.Graph, rho float64) (*Operator, error) {
	n := g.N()
	a := NewSparse(n)
	for i := 0; i < n; i++ {
		a.Add(i, i, 1)
	}
	for i, e := range g.Edges() {
		l := e.L - 1
		m := e.M - 1
		w := rho * e.W
		a.Add(l, l, w)
		a.Add(m, m, w)
		a.Add(l, m, -w)
		_ = i
	}
	lu, err := FactorSparse(a)
	if err != nil {
		return nil, err
	}
	return &Operator{g: g, rho: rho, lu: lu}, nil
}

// SolveU performs the U-step: solve A·U = b where b = x + Dᵀ(ρV - Z),
// coordinate column by coordinate column, reusing the single cached
// n×n factorization.
func (op *Operator) SolveU(b []float64) []float64 {
	n := op.g.N()
	p := op.g.P()
	u := make([]float64, n*p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = b[i*p+j]
		}
		sol := op.lu.Solve(col)
		for i := 0; i < n; i++ {
			u[i*p+j] = sol[i]
		}
	}
	return u
}

// Graph returns the operator's underlying fusion graph.
func (op *Operator) Graph() *graph.Graph { return op.g }

// Rho returns the ADMM penalty parameter this operator was factored with.
func (op *Operator) Rho() float64 { return op.rho }
