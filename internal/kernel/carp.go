package kernel

import (
	"math"

	"fusionpath/internal/graph"
	"fusionpath/internal/linalg"
	"fusionpath/internal/prox"

	"gonum.org/v1/gonum/floats"
)

// Config bundles the ADMM/path-schedule configuration shared by the plain
// (CARP) and back-tracking (CARP-VIZ) variants.
type Config struct {
	Gamma0  float64
	T       float64
	Rho     float64
	MaxIter int
	BurnIn  int
	Keep    int
	Penalty prox.Penalty
	Variant Variant

	// VizTCoarse is the coarse γ expansion factor used by RunViz's
	// Coarse state (default ~10).
	VizTCoarse float64
	// VizTSwitch is the geometric shrink factor used by RunViz's
	// Bisect state (default ~1.01).
	VizTSwitch float64
	// VizBisectBudget bounds how many shrink attempts Bisect makes
	// before committing with a MultiMerge tag.
	VizBisectBudget int

	// CheckEvery is how often (in iterations) the cancellation flag is
	// polled (default 50).
	CheckEvery int
}

// Variant selects the plain CARP loop or the back-tracking CARP-VIZ loop.
type Variant int

const (
	Plain Variant = iota
	Viz
)

// Validate checks the configuration invariants that, if violated, make a
// run fail fast with InvalidInputError rather than misbehave silently.
func (c Config) Validate() error {
	if c.Gamma0 <= 0 {
		return &InvalidInputError{Msg: "gamma0 must be positive"}
	}
	if c.T <= 1 {
		return &InvalidInputError{Msg: "t must be greater than 1"}
	}
	if c.Rho <= 0 {
		return &InvalidInputError{Msg: "rho must be positive"}
	}
	if c.MaxIter < 1 {
		return &InvalidInputError{Msg: "max_iter must be at least 1"}
	}
	if c.BurnIn < 1 || c.BurnIn >= c.MaxIter {
		return &InvalidInputError{Msg: "burn_in must be in [1, max_iter)"}
	}
	if c.Keep < 1 {
		return &InvalidInputError{Msg: "keep must be at least 1"}
	}
	if c.Variant == Viz {
		if c.VizTCoarse <= 1 {
			return &InvalidInputError{Msg: "viz_t_coarse must be greater than 1"}
		}
		if c.VizTSwitch <= 1 {
			return &InvalidInputError{Msg: "viz_t_switch must be greater than 1"}
		}
	}
	return nil
}

// CheckInterval returns the effective cancellation-poll interval,
// defaulting to 50 when unset.
func (c Config) CheckInterval() int {
	if c.CheckEvery <= 0 {
		return 50
	}
	return c.CheckEvery
}

// BisectBudget returns the effective VIZ bisection attempt budget,
// defaulting to 50 when unset.
func (c Config) BisectBudget() int {
	if c.VizBisectBudget <= 0 {
		return 50
	}
	return c.VizBisectBudget
}

// Path is the full result of a path-tracking run: the compacted U, V, ζ
// and γ paths plus the terminal status.
type Path struct {
	UPath     []float64 // (n·p) x K, column-major
	VPath     []float64 // (|E|·p) x K, column-major
	ZetaPath  []int     // |E| x K, column-major
	GammaPath []float64 // length K
	Cols      int
	N, P      int
	NumEdges  int
	Status    Status
}

// UColumn returns a view of the k-th U column.
func (p *Path) UColumn(k int) []float64 {
	rows := p.N * p.P
	return p.UPath[k*rows : (k+1)*rows]
}

// VColumn returns a view of the k-th V column.
func (p *Path) VColumn(k int) []float64 {
	rows := p.NumEdges * p.P
	return p.VPath[k*rows : (k+1)*rows]
}

// ZetaColumn returns a view of the k-th ζ column.
func (p *Path) ZetaColumn(k int) []int {
	return p.ZetaPath[k*p.NumEdges : (k+1)*p.NumEdges]
}

// state is the mutable working memory shared by Run (plain CARP) and the
// VIZ state machine; it holds exactly one ADMM iterate.
type state struct {
	u, v, z []float64
	zeta    []int
	gamma   float64
}

func newState(n, p, numEdges int, uInit, vInit []float64, gamma0 float64) *state {
	s := &state{
		u:     append([]float64(nil), uInit...),
		v:     append([]float64(nil), vInit...),
		z:     make([]float64, numEdges*p),
		zeta:  make([]int, numEdges),
		gamma: gamma0,
	}
	return s
}

func (s *state) clone() *state {
	return &state{
		u:     append([]float64(nil), s.u...),
		v:     append([]float64(nil), s.v...),
		z:     append([]float64(nil), s.z...),
		zeta:  append([]int(nil), s.zeta...),
		gamma: s.gamma,
	}
}

// step executes one ADMM U/V/Z update in place at the state's current γ,
// and returns the new ζ (the state's own ζ field is left untouched so
// callers -- in particular VizKernel -- can decide whether to commit it).
func step(op *linalg.Operator, g *graph.Graph, x []float64, cfg Config, s *state) (newZeta []int, err error) {
	p := g.P()
	numEdges := g.NumEdges()

	// U-step: b = x + Dᵀ(ρV - Z); U = A⁻¹ b.
	rhoVMinusZ := make([]float64, numEdges*p)
	copy(rhoVMinusZ, s.v)
	floats.Scale(cfg.Rho, rhoVMinusZ)
	floats.Sub(rhoVMinusZ, s.z)
	b := make([]float64, len(s.u))
	linalg.Dt(g, rhoVMinusZ, b)
	floats.Add(b, x)
	uNew := op.SolveU(b)

	// V-step: y = D(U) + Z/rho; V = prox(y).
	du := make([]float64, numEdges*p)
	linalg.D(g, uNew, du)
	zOverRho := make([]float64, len(s.z))
	copy(zOverRho, s.z)
	floats.Scale(1/cfg.Rho, zOverRho)
	y := make([]float64, numEdges*p)
	copy(y, du)
	floats.Add(y, zOverRho)
	vNew := make([]float64, numEdges*p)
	prox.Apply(cfg.Penalty, g, y, s.gamma, cfg.Rho, vNew)

	// Z-step: Z += rho*(DU - V).
	duMinusV := make([]float64, numEdges*p)
	copy(duMinusV, du)
	floats.Sub(duMinusV, vNew)
	floats.Scale(cfg.Rho, duMinusV)
	zNew := make([]float64, len(s.z))
	copy(zNew, s.z)
	floats.Add(zNew, duMinusV)

	if !allFinite(uNew) || !allFinite(vNew) || !allFinite(zNew) {
		return nil, &NumericalOverflowError{}
	}

	zeta := prox.FusionIndicator(g, vNew)

	s.u = uNew
	s.v = vNew
	s.z = zNew

	return zeta, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sumZeta(zeta []int) int {
	n := 0
	for _, z := range zeta {
		n += z
	}
	return n
}

// Run executes the plain (non-VIZ) CARP loop: one fixed-γ ADMM step per
// outer iteration, γ grown geometrically after burn-in.
func Run(op *linalg.Operator, x []float64, uInit, vInit []float64, cfg Config, cancel *Cancel) (*Path, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := op.Graph()
	n, p, numEdges := g.N(), g.P(), g.NumEdges()
	if len(x) != n*p {
		return nil, &InvalidInputError{Msg: "x length must equal n*p"}
	}
	if len(uInit) != n*p {
		return nil, &InvalidInputError{Msg: "u_init length must equal n*p"}
	}
	if len(vInit) != numEdges*p {
		return nil, &InvalidInputError{Msg: "v_init length must equal |E|*p"}
	}

	initialCap := int(math.Ceil(1.5 * float64(n)))
	uBuf := NewPathBuffer(n*p, initialCap)
	vBuf := NewPathBuffer(numEdges*p, initialCap)
	zetaBuf := NewIntPathBuffer(numEdges, initialCap)
	gammaBuf := NewScalarPathBuffer(initialCap)

	s := newState(n, p, numEdges, uInit, vInit, cfg.Gamma0)
	uBuf.Append(s.u)
	vBuf.Append(s.v)
	zetaBuf.Append(s.zeta)
	gammaBuf.Append(s.gamma)

	status := Status{Kind: MaxIterReached}
	nzerosOld := 0

	for iter := 0; iter < cfg.MaxIter; iter++ {
		if nzerosOld >= numEdges {
			status = Status{Kind: Completed}
			break
		}
		zetaNew, err := step(op, g, x, cfg, s)
		if err != nil {
			return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, Status{Kind: MaxIterReached}), err
		}
		nzerosNew := sumZeta(zetaNew)
		s.zeta = zetaNew

		if nzerosNew != nzerosOld || iter%cfg.Keep == 0 {
			uBuf.Append(s.u)
			vBuf.Append(s.v)
			zetaBuf.Append(s.zeta)
			gammaBuf.Append(s.gamma)
		}
		nzerosOld = nzerosNew

		if iter+1 >= cfg.BurnIn {
			s.gamma *= cfg.T
		}

		if nzerosNew >= numEdges {
			status = Status{Kind: Completed}
			break
		}

		if (iter+1)%cfg.CheckInterval() == 0 && cancel.Requested() {
			status = Status{Kind: Cancelled}
			break
		}
	}

	return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, status), nil
}

func buildPath(uBuf, vBuf *PathBuffer, zetaBuf *IntPathBuffer, gammaBuf *ScalarPathBuffer, n, p, numEdges int, status Status) *Path {
	return &Path{
		UPath:     uBuf.Compact(),
		VPath:     vBuf.Compact(),
		ZetaPath:  zetaBuf.Compact(),
		GammaPath: gammaBuf.Values(),
		Cols:      uBuf.Cols(),
		N:         n,
		P:         p,
		NumEdges:  numEdges,
		Status:    status,
	}
}
