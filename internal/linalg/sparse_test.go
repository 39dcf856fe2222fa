package linalg

import "testing"

func TestSparseAddSymmetric(t *testing.T) {
	s := NewSparse(3)
	s.Add(0, 1, 2.0)
	if got := s.At(0, 1); got != 2.0 {
		t.Fatalf("At(0,1) = %v, want 2", got)
	}
	if got := s.At(1, 0); got != 2.0 {
		t.Fatalf("At(1,0) = %v, want 2 (symmetry)", got)
	}
	s.Add(0, 1, 3.0)
	if got := s.At(0, 1); got != 5.0 {
		t.Fatalf("At(0,1) after accumulation = %v, want 5", got)
	}
	if got := s.At(2, 2); got != 0 {
		t.Fatalf("At(2,2) = %v, want 0 for an untouched entry", got)
	}
}

func TestSparseDiagonalNotDoubled(t *testing.T) {
	s := NewSparse(2)
	s.Add(0, 0, 1.0)
	if got := s.At(0, 0); got != 1.0 {
		t.Fatalf("At(0,0) = %v, want 1", got)
	}
	if got := s.NonZeroCount(); got != 1 {
		t.Fatalf("NonZeroCount() = %d, want 1", got)
	}
}

// TestFactorSparseIdentitySolve verifies that FactorSparse on I (a trivial SPD matrix)
// recovers the identity solve.
func TestFactorSparseIdentitySolve(t *testing.T) {
	n := 4
	a := NewSparse(n)
	for i := 0; i < n; i++ {
		a.Add(i, i, 1)
	}
	lu, err := FactorSparse(a)
	if err != nil {
		t.Fatalf("FactorSparse() error: %v", err)
	}
	b := []float64{1, 2, 3, 4}
	x := lu.Solve(b)
	for i, v := range x {
		if v != b[i] {
			t.Fatalf("Solve(b)[%d] = %v, want %v", i, v, b[i])
		}
	}
}

func TestFactorSparseTridiagonal(t *testing.T) {
	// A = I + rho*L for a 3-node path graph 0-1-2 with unit weights.
	n := 3
	rho := 1.0
	a := NewSparse(n)
	for i := 0; i < n; i++ {
		a.Add(i, i, 1)
	}
	a.Add(0, 0, rho)
	a.Add(1, 1, rho)
	a.Add(0, 1, -rho)
	a.Add(1, 1, rho)
	a.Add(2, 2, rho)
	a.Add(1, 2, -rho)

	lu, err := FactorSparse(a)
	if err != nil {
		t.Fatalf("FactorSparse() error: %v", err)
	}
	b := []float64{1, 0, -1}
	x := lu.Solve(b)

	// Reconstruct A*x and compare against b within tolerance.
	dense := [][]float64{
		{1 + rho, -rho, 0},
		{-rho, 1 + 2*rho, -rho},
		{0, -rho, 1 + rho},
	}
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += dense[i][j] * x[j]
		}
		if diff := sum - b[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("row %d: A*x = %v, want %v", i, sum, b[i])
		}
	}
}

func TestFactorSparseNonChordalCycle(t *testing.T) {
	// A = I + rho*L for a 4-cycle graph 0-1-2-3-0 with unit weights. Under
	// the natural elimination order 0,1,2,3 this graph is not chordal:
	// eliminating node 0 (which touches both 1 and 3) creates a fill entry
	// at (1,3) that has no counterpart in A's original pattern.
	n := 4
	rho := 1.0
	a := NewSparse(n)
	for i := 0; i < n; i++ {
		a.Add(i, i, 1)
	}
	a.Add(0, 0, 2*rho)
	a.Add(1, 1, 2*rho)
	a.Add(2, 2, 2*rho)
	a.Add(3, 3, 2*rho)
	a.Add(0, 1, -rho)
	a.Add(1, 2, -rho)
	a.Add(2, 3, -rho)
	a.Add(3, 0, -rho)

	dense := [][]float64{
		{1 + 2*rho, -rho, 0, -rho},
		{-rho, 1 + 2*rho, -rho, 0},
		{0, -rho, 1 + 2*rho, -rho},
		{-rho, 0, -rho, 1 + 2*rho},
	}

	lu, err := FactorSparse(a)
	if err != nil {
		t.Fatalf("FactorSparse() error: %v", err)
	}

	for _, b := range [][]float64{
		{1, 0, 0, 0},
		{1, -1, 1, -1},
		{0, 2, -3, 1},
	} {
		x := lu.Solve(b)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += dense[i][j] * x[j]
			}
			if diff := sum - b[i]; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("b=%v: row %d: A*x = %v, want %v (fill-in at (1,3) not tracked correctly)", b, i, sum, b[i])
			}
		}
	}
}

func TestFactorSparseSingularFails(t *testing.T) {
	a := NewSparse(2)
	// All-zero matrix is positive semi-definite but not positive definite.
	_, err := FactorSparse(a)
	if err == nil {
		t.Fatal("FactorSparse() on the zero matrix = nil error, want LUError")
	}
	if _, ok := err.(*LUError); !ok {
		t.Fatalf("FactorSparse() error type = %T, want *LUError", err)
	}
}
