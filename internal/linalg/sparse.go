// Package linalg assembles the implicit differencing operator D and the
// sparse coefficient matrix A = I + ρ·DᵀD used by the U-step of every path
// kernel, and factors A once per run so every ADMM step only pays for a
// back-substitution.
//
// The sparse matrix representation and the factorization routine below
// follow the row/column sweep style of a symmetric sparse solver rather
// than a dense one: entries are stored per row as a sorted (column, value)
// list, matching how sparse circuit/FEM solvers in the wild lay out their
// working storage.
package linalg

import (
	"fmt"
	"sort"
)

// Sparse is a symmetric sparse matrix stored as one sorted adjacency list
// per row (including the diagonal). It is built once from a Graph's edge
// list and is never resized after Factor runs.
type Sparse struct {
	n    int
	rows [][]entry
}

type entry struct {
	col int
	val float64
}

// NewSparse returns an n×n all-zero symmetric sparse matrix.
func NewSparse(n int) *Sparse {
	return &Sparse{n: n, rows: make([][]entry, n)}
}

// N returns the matrix dimension.
func (s *Sparse) N() int { return s.n }

// Add accumulates delta into (row, col) and, since the matrix is kept
// symmetric, into (col, row) as well when row != col.
func (s *Sparse) Add(row, col int, delta float64) {
	s.addOne(row, col, delta)
	if row != col {
		s.addOne(col, row, delta)
	}
}

func (s *Sparse) addOne(row, col int, delta float64) {
	r := s.rows[row]
	idx := sort.Search(len(r), func(i int) bool { return r[i].col >= col })
	if idx < len(r) && r[idx].col == col {
		r[idx].val += delta
		return
	}
	r = append(r, entry{})
	copy(r[idx+1:], r[idx:])
	r[idx] = entry{col: col, val: delta}
	s.rows[row] = r
}

// At returns the value stored at (row, col), or 0 if absent.
func (s *Sparse) At(row, col int) float64 {
	r := s.rows[row]
	idx := sort.Search(len(r), func(i int) bool { return r[i].col >= col })
	if idx < len(r) && r[idx].col == col {
		return r[idx].val
	}
	return 0
}

// NonZeroCount returns the total number of stored entries across all rows.
func (s *Sparse) NonZeroCount() int {
	n := 0
	for _, r := range s.rows {
		n += len(r)
	}
	return n
}

// LUError wraps a factorization failure so callers can detect it with
// errors.As without depending on this package's internals.
type LUError struct {
	Row int
	Msg string
}

func (e *LUError) Error() string {
	return fmt.Sprintf("linalg: factorization failed at row %d: %s", e.Row, e.Msg)
}

// LU is the factored form of a symmetric positive-definite Sparse matrix.
// Internally this is an LDLᵀ (symmetric Doolittle) factorization, which is
// the numerically-preferred specialization of LU for the symmetric
// positive-definite matrices this package only ever factors: no row
// pivoting is required because A = I + ρ·DᵀD is diagonally dominant for
// every ρ > 0.
type LU struct {
	n    int
	L    [][]entry // strictly lower triangular, unit diagonal implied
	diag []float64 // D of LDLᵀ
}

// FactorSparse produces a reusable solver for A. Returns *LUError if a
// pivot underflows to a non-positive value, which should not occur for a
// well-formed graph and ρ > 0.
//
// This is a right-looking sparse LDLᵀ: eliminating column k applies a
// rank-1 update to every remaining (i, j) pair that shares a nonzero in
// column k, so fill-in not present in A's original pattern (as happens
// eliminating a 4-cycle, or any other graph that isn't chordal under the
// natural elimination order) is tracked explicitly rather than assumed
// away.
func FactorSparse(a *Sparse) (*LU, error) {
	n := a.n
	lu := &LU{n: n, L: make([][]entry, n), diag: make([]float64, n)}

	// row[i] holds row i's lower-triangular entries (col <= i) still to be
	// eliminated. Seeded from A, then mutated in place with fill-in as
	// each column is processed.
	row := make([]map[int]float64, n)
	for i := 0; i < n; i++ {
		row[i] = make(map[int]float64, len(a.rows[i]))
		for _, e := range a.rows[i] {
			if e.col <= i {
				row[i][e.col] = e.val
			}
		}
	}

	type colEntry struct {
		i   int
		lik float64
	}

	for k := 0; k < n; k++ {
		dk := row[k][k]
		if dk <= 0 {
			return nil, &LUError{Row: k, Msg: fmt.Sprintf("non-positive pivot %g", dk)}
		}
		lu.diag[k] = dk

		var col []colEntry
		for i := k + 1; i < n; i++ {
			aik, ok := row[i][k]
			if !ok || aik == 0 {
				continue
			}
			lik := aik / dk
			lu.L[i] = append(lu.L[i], entry{col: k, val: lik})
			col = append(col, colEntry{i: i, lik: lik})
			delete(row[i], k)
		}

		// Rank-1 update: every pair of rows touching column k (including a
		// row against itself) loses L_ik * d_k * L_jk from its remaining
		// entry, which is exactly where fill-in not in A's original
		// pattern gets created.
		for a := 0; a < len(col); a++ {
			i, li := col[a].i, col[a].lik
			for b := a; b < len(col); b++ {
				j, lj := col[b].i, col[b].lik
				r, c := i, j
				if r < c {
					r, c = c, r
				}
				row[r][c] -= li * dk * lj
			}
		}
	}
	return lu, nil
}

func lookup(es []entry, col int) (float64, bool) {
	for _, e := range es {
		if e.col == col {
			return e.val, true
		}
	}
	return 0, false
}

// Solve returns x such that A·x = b, using the cached LDLᵀ factors.
func (lu *LU) Solve(b []float64) []float64 {
	n := lu.n
	y := make([]float64, n)
	copy(y, b)
	// forward solve L·z = b
	for i := 0; i < n; i++ {
		for _, e := range lu.L[i] {
			y[i] -= e.val * y[e.col]
		}
	}
	// diagonal solve
	for i := 0; i < n; i++ {
		y[i] /= lu.diag[i]
	}
	// back solve Lᵀ·x = z
	for i := n - 1; i >= 0; i-- {
		xi := y[i]
		for j := i + 1; j < n; j++ {
			if v, ok := lookup(lu.L[j], i); ok {
				xi -= v * y[j]
			}
		}
		y[i] = xi
	}
	return y
}
