package kernel

import (
	"math"
	"testing"

	"fusionpath/internal/graph"
	"fusionpath/internal/linalg"
	"fusionpath/internal/prox"
)

func threeCollinearGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(3, 1, []graph.Edge{
		{L: 1, M: 2, W: 1},
		{L: 2, M: 3, W: 1},
		{L: 1, M: 3, W: 1},
	})
	if err != nil {
		t.Fatalf("graph.New() error: %v", err)
	}
	return g
}

// S1: three collinear points in 1D should fully fuse to their mean well
// before max_iter, and the burn-in/schedule invariants hold exactly when
// every iteration is recorded (Keep=1).
func TestRunS1ThreeCollinearPoints(t *testing.T) {
	g := threeCollinearGraph(t)
	op, err := linalg.Factor(g, 1.0)
	if err != nil {
		t.Fatalf("Factor() error: %v", err)
	}
	x := []float64{-1, 0, 1}
	cfg := Config{
		Gamma0: 1e-8, T: 1.1, Rho: 1, MaxIter: 10000, BurnIn: 50, Keep: 1,
		Penalty: prox.L2, Variant: Plain,
	}
	uInit := append([]float64(nil), x...)
	vInit := make([]float64, g.NumEdges()*g.P())

	path, err := Run(op, x, uInit, vInit, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if path.Status.Kind != Completed {
		t.Fatalf("Status = %v, want Completed", path.Status)
	}

	final := path.UColumn(path.Cols - 1)
	for i, v := range final {
		if math.Abs(v) > 1e-6 {
			t.Fatalf("final U[%d] = %v, want ~0 (mean of -1,0,1)", i, v)
		}
	}

	// Burn-in invariance: with Keep=1, every raw iteration is its own
	// column, so column k holds gamma0 for every k < BurnIn.
	for k := 0; k < cfg.BurnIn && k < path.Cols; k++ {
		if path.GammaPath[k] != cfg.Gamma0 {
			t.Fatalf("GammaPath[%d] = %v, want %v (burn-in)", k, path.GammaPath[k], cfg.Gamma0)
		}
	}

	// Schedule law: immediately after burn-in (and before full fusion is
	// guaranteed to have happened this early), gamma grows by exactly T.
	// Column 0 is the initial state, so column BurnIn is the last burn-in
	// iteration and column BurnIn+1 the first one at the grown gamma.
	if path.Cols > cfg.BurnIn+1 {
		ratio := path.GammaPath[cfg.BurnIn+1] / path.GammaPath[cfg.BurnIn]
		if math.Abs(ratio-cfg.T) > 1e-9 {
			t.Fatalf("gamma ratio at burn-in boundary = %v, want %v", ratio, cfg.T)
		}
	}
}

// S3: a disconnected graph (two independent single edges) should not
// error, and both components fuse independently so the run still
// reaches Completed (Sigma zeta = |E|) well within max_iter.
func TestRunS3DisconnectedGraph(t *testing.T) {
	g, err := graph.New(4, 1, []graph.Edge{{L: 1, M: 2, W: 1}, {L: 3, M: 4, W: 1}})
	if err != nil {
		t.Fatalf("graph.New() error: %v", err)
	}
	op, err := linalg.Factor(g, 1.0)
	if err != nil {
		t.Fatalf("Factor() error: %v", err)
	}
	x := []float64{0, 0.5, 10, 10.2}
	cfg := Config{
		Gamma0: 1e-8, T: 1.1, Rho: 1, MaxIter: 10000, BurnIn: 50, Keep: 10,
		Penalty: prox.L2, Variant: Plain,
	}
	uInit := append([]float64(nil), x...)
	vInit := make([]float64, g.NumEdges()*g.P())

	path, err := Run(op, x, uInit, vInit, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if path.Status.Kind != Completed {
		t.Fatalf("Status = %v, want Completed", path.Status)
	}
	finalZeta := path.ZetaColumn(path.Cols - 1)
	sum := 0
	for _, z := range finalZeta {
		sum += z
	}
	if sum != g.NumEdges() {
		t.Fatalf("final fused edge count = %d, want %d", sum, g.NumEdges())
	}
}

// S5: cancellation requested early must surface as Cancelled with a
// non-empty partial path, and the zero-block invariant must still hold
// on that partial result.
func TestRunS5Cancellation(t *testing.T) {
	g := threeCollinearGraph(t)
	op, err := linalg.Factor(g, 1.0)
	if err != nil {
		t.Fatalf("Factor() error: %v", err)
	}
	x := []float64{-1, 0, 1}
	cfg := Config{
		Gamma0: 1e-8, T: 1.1, Rho: 1, MaxIter: 10000, BurnIn: 50, Keep: 1,
		Penalty: prox.L2, Variant: Plain, CheckEvery: 1,
	}
	uInit := append([]float64(nil), x...)
	vInit := make([]float64, g.NumEdges()*g.P())

	cancel := NewCancel()
	cancel.Set()

	path, err := Run(op, x, uInit, vInit, cfg, cancel)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if path.Status.Kind != Cancelled {
		t.Fatalf("Status = %v, want Cancelled", path.Status)
	}
	if path.Cols < 1 {
		t.Fatalf("Cols = %d, want >= 1", path.Cols)
	}
	for k := 0; k < path.Cols; k++ {
		zeta := path.ZetaColumn(k)
		v := path.VColumn(k)
		p := g.P()
		for i, z := range zeta {
			if z == 1 {
				for j := 0; j < p; j++ {
					if v[i*p+j] != 0 {
						t.Fatalf("col %d edge %d: zeta=1 but v-block not zero", k, i)
					}
				}
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{Gamma0: 1e-8, T: 1.1, Rho: 1, MaxIter: 100, BurnIn: 10, Keep: 1}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate() on a well-formed config = %v, want nil", err)
	}

	bad := base
	bad.Gamma0 = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() with Gamma0=0 = nil, want error")
	}

	bad = base
	bad.T = 1
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() with T=1 = nil, want error")
	}

	bad = base
	bad.BurnIn = bad.MaxIter
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() with BurnIn=MaxIter = nil, want error")
	}

	viz := base
	viz.Variant = Viz
	if err := viz.Validate(); err == nil {
		t.Fatal("Validate() for Viz variant missing VizTCoarse/VizTSwitch = nil, want error")
	}
}
