package linalg

import (
	"fmt"

	"fusionpath/internal/graph"
)

// CombinedOperator factors the coupled biclustering coefficient matrix
// A = I + ρ·(D_colᵀD_col + D_rowᵀD_row) once, in the single flat index
// space idx(obs, var) = obs*p + var shared by both the row- and
// column-direction kernels of a BiKernel run.
//
// Unlike the single-direction Operator, this matrix does not decompose
// into identical per-coordinate blocks (the row and column penalties
// couple every entry), so it is factored and solved at its full n·p
// size.
type CombinedOperator struct {
	n, p int
	rho  float64
	lu   *LU
}

// FactorCombined builds and factors the combined operator from a
// column-direction graph (points = n observations, block = p variables)
// and a row-direction graph (points = p variables, block = n
// observations).
func FactorCombined(gCol, gRow *graph.Graph, rho float64) (*CombinedOperator, error) {
	n, p := gCol.N(), gCol.P()
	if gRow.N() != p || gRow.P() != n {
		return nil, fmt.Errorf("linalg: row/col graph dimensions mismatched (col n=%d p=%d, row n=%d p=%d)", n, p, gRow.N(), gRow.P())
	}
	size := n * p
	a := NewSparse(size)
	idx := func(obs, v int) int { return obs*p + v }

	for i := 0; i < size; i++ {
		a.Add(i, i, 1)
	}
	for _, e := range gCol.Edges() {
		l, m := e.L-1, e.M-1
		w := rho * e.W
		for v := 0; v < p; v++ {
			a.Add(idx(l, v), idx(l, v), w)
			a.Add(idx(m, v), idx(m, v), w)
			a.Add(idx(l, v), idx(m, v), -w)
		}
	}
	for _, e := range gRow.Edges() {
		va, vb := e.L-1, e.M-1
		w := rho * e.W
		for o := 0; o < n; o++ {
			a.Add(idx(o, va), idx(o, va), w)
			a.Add(idx(o, vb), idx(o, vb), w)
			a.Add(idx(o, va), idx(o, vb), -w)
		}
	}

	lu, err := FactorSparse(a)
	if err != nil {
		return nil, err
	}
	return &CombinedOperator{n: n, p: p, rho: rho, lu: lu}, nil
}

// Solve returns x such that A·x = b in the combined n·p index space.
func (op *CombinedOperator) Solve(b []float64) []float64 { return op.lu.Solve(b) }

// N returns the observation count.
func (op *CombinedOperator) N() int { return op.n }

// P returns the variable count.
func (op *CombinedOperator) P() int { return op.p }

// ToVarMajor transposes a length n·p obs-major (idx = obs*p+var) vector
// into variable-major (idx = var*n+obs) layout.
func ToVarMajor(uObs []float64, n, p int) []float64 {
	out := make([]float64, n*p)
	for obs := 0; obs < n; obs++ {
		for v := 0; v < p; v++ {
			out[v*n+obs] = uObs[obs*p+v]
		}
	}
	return out
}

// ToObsMajor transposes a length p·n variable-major vector back into
// obs-major layout.
func ToObsMajor(uVar []float64, n, p int) []float64 {
	out := make([]float64, n*p)
	for v := 0; v < p; v++ {
		for obs := 0; obs < n; obs++ {
			out[obs*p+v] = uVar[v*n+obs]
		}
	}
	return out
}
