// Package bikernel implements the coupled row/column path kernel behind
// convex biclustering (CBASS): a single primal U shared by a
// column-direction kernel (fusing observations) and a row-direction
// kernel (fusing variables), solved each step through one combined
// sparse system rather than two independent ones.
package bikernel

import (
	"math"

	"fusionpath/internal/graph"
	"fusionpath/internal/kernel"
	"fusionpath/internal/linalg"
	"fusionpath/internal/prox"

	"gonum.org/v1/gonum/floats"
)

// Path is the full result of a biclustering run: the shared U path plus
// the independent row- and column-direction V/ζ paths.
type Path struct {
	UPath        []float64 // (n·p) x K, obs-major, column-major over K
	VColPath     []float64 // (|Ecol|·p) x K
	VRowPath     []float64 // (|Erow|·n) x K
	ZetaColPath  []int     // |Ecol| x K
	ZetaRowPath  []int     // |Erow| x K
	GammaPath    []float64
	Cols         int
	N, P         int
	NumEdgesCol  int
	NumEdgesRow  int
	Status       kernel.Status
}

// UColumn returns a view of the k-th shared U column (obs-major).
func (p *Path) UColumn(k int) []float64 {
	rows := p.N * p.P
	return p.UPath[k*rows : (k+1)*rows]
}

// VColColumn returns a view of the k-th column-direction V column.
func (p *Path) VColColumn(k int) []float64 {
	rows := p.NumEdgesCol * p.P
	return p.VColPath[k*rows : (k+1)*rows]
}

// VRowColumn returns a view of the k-th row-direction V column.
func (p *Path) VRowColumn(k int) []float64 {
	rows := p.NumEdgesRow * p.N
	return p.VRowPath[k*rows : (k+1)*rows]
}

// biState is the mutable working memory for one coupled ADMM iterate.
type biState struct {
	uObs             []float64
	vCol, zCol       []float64
	vRow, zRow       []float64
	zetaCol, zetaRow []int
	gamma            float64
}

func newBiState(n, p, numCol, numRow int, uInit []float64, gamma0 float64) *biState {
	return &biState{
		uObs:    append([]float64(nil), uInit...),
		vCol:    make([]float64, numCol*p),
		zCol:    make([]float64, numCol*p),
		vRow:    make([]float64, numRow*n),
		zRow:    make([]float64, numRow*n),
		zetaCol: make([]int, numCol),
		zetaRow: make([]int, numRow),
		gamma:   gamma0,
	}
}

func (s *biState) clone() *biState {
	return &biState{
		uObs:    append([]float64(nil), s.uObs...),
		vCol:    append([]float64(nil), s.vCol...),
		zCol:    append([]float64(nil), s.zCol...),
		vRow:    append([]float64(nil), s.vRow...),
		zRow:    append([]float64(nil), s.zRow...),
		zetaCol: append([]int(nil), s.zetaCol...),
		zetaRow: append([]int(nil), s.zetaRow...),
		gamma:   s.gamma,
	}
}

// step executes one coupled ADMM U/V/Z update for both directions at s's
// current γ, leaving s.zetaCol/s.zetaRow untouched so VIZ can decide
// whether to commit the trial.
func step(op *linalg.CombinedOperator, gCol, gRow *graph.Graph, x []float64, cfg kernel.Config, s *biState) (zetaCol, zetaRow []int, err error) {
	n, p := gCol.N(), gCol.P()
	numCol := gCol.NumEdges()
	numRow := gRow.NumEdges()

	rhoVMinusZCol := make([]float64, numCol*p)
	copy(rhoVMinusZCol, s.vCol)
	floats.Scale(cfg.Rho, rhoVMinusZCol)
	floats.Sub(rhoVMinusZCol, s.zCol)
	bCol := make([]float64, n*p)
	linalg.Dt(gCol, rhoVMinusZCol, bCol)

	rhoVMinusZRow := make([]float64, numRow*n)
	copy(rhoVMinusZRow, s.vRow)
	floats.Scale(cfg.Rho, rhoVMinusZRow)
	floats.Sub(rhoVMinusZRow, s.zRow)
	bRowVar := make([]float64, p*n)
	linalg.Dt(gRow, rhoVMinusZRow, bRowVar)
	bRowObs := linalg.ToObsMajor(bRowVar, n, p)

	b := make([]float64, n*p)
	copy(b, x)
	floats.Add(b, bCol)
	floats.Add(b, bRowObs)

	uNewObs := op.Solve(b)

	duCol := make([]float64, numCol*p)
	linalg.D(gCol, uNewObs, duCol)
	zOverRhoCol := make([]float64, len(s.zCol))
	copy(zOverRhoCol, s.zCol)
	floats.Scale(1/cfg.Rho, zOverRhoCol)
	yCol := make([]float64, numCol*p)
	copy(yCol, duCol)
	floats.Add(yCol, zOverRhoCol)
	vNewCol := make([]float64, numCol*p)
	prox.Apply(cfg.Penalty, gCol, yCol, s.gamma, cfg.Rho, vNewCol)
	duMinusVCol := make([]float64, numCol*p)
	copy(duMinusVCol, duCol)
	floats.Sub(duMinusVCol, vNewCol)
	floats.Scale(cfg.Rho, duMinusVCol)
	zNewCol := make([]float64, len(s.zCol))
	copy(zNewCol, s.zCol)
	floats.Add(zNewCol, duMinusVCol)

	uNewVar := linalg.ToVarMajor(uNewObs, n, p)
	duRow := make([]float64, numRow*n)
	linalg.D(gRow, uNewVar, duRow)
	zOverRhoRow := make([]float64, len(s.zRow))
	copy(zOverRhoRow, s.zRow)
	floats.Scale(1/cfg.Rho, zOverRhoRow)
	yRow := make([]float64, numRow*n)
	copy(yRow, duRow)
	floats.Add(yRow, zOverRhoRow)
	vNewRow := make([]float64, numRow*n)
	prox.Apply(cfg.Penalty, gRow, yRow, s.gamma, cfg.Rho, vNewRow)
	duMinusVRow := make([]float64, numRow*n)
	copy(duMinusVRow, duRow)
	floats.Sub(duMinusVRow, vNewRow)
	floats.Scale(cfg.Rho, duMinusVRow)
	zNewRow := make([]float64, len(s.zRow))
	copy(zNewRow, s.zRow)
	floats.Add(zNewRow, duMinusVRow)

	if !allFinite(uNewObs) || !allFinite(vNewCol) || !allFinite(vNewRow) || !allFinite(zNewCol) || !allFinite(zNewRow) {
		return nil, nil, &kernel.NumericalOverflowError{}
	}

	zetaCol = prox.FusionIndicator(gCol, vNewCol)
	zetaRow = prox.FusionIndicator(gRow, vNewRow)

	s.uObs = uNewObs
	s.vCol, s.zCol = vNewCol, zNewCol
	s.vRow, s.zRow = vNewRow, zNewRow

	return zetaCol, zetaRow, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sumInts(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

// Run executes the plain (non-VIZ) coupled CBASS loop: one fixed-γ ADMM
// step per outer iteration, γ grown geometrically after burn-in, until
// both directions are fully fused or max_iter is reached.
func Run(op *linalg.CombinedOperator, gCol, gRow *graph.Graph, x, uInit []float64, cfg kernel.Config, cancel *kernel.Cancel) (*Path, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n, p := gCol.N(), gCol.P()
	numCol, numRow := gCol.NumEdges(), gRow.NumEdges()
	if len(x) != n*p {
		return nil, &kernel.InvalidInputError{Msg: "x length must equal n*p"}
	}
	if len(uInit) != n*p {
		return nil, &kernel.InvalidInputError{Msg: "u_init length must equal n*p"}
	}

	initialCap := int(math.Ceil(1.5 * float64(n+p)))
	uBuf := kernel.NewPathBuffer(n*p, initialCap)
	vColBuf := kernel.NewPathBuffer(numCol*p, initialCap)
	vRowBuf := kernel.NewPathBuffer(numRow*n, initialCap)
	zetaColBuf := kernel.NewIntPathBuffer(numCol, initialCap)
	zetaRowBuf := kernel.NewIntPathBuffer(numRow, initialCap)
	gammaBuf := kernel.NewScalarPathBuffer(initialCap)

	s := newBiState(n, p, numCol, numRow, uInit, cfg.Gamma0)
	record := func() {
		uBuf.Append(s.uObs)
		vColBuf.Append(s.vCol)
		vRowBuf.Append(s.vRow)
		zetaColBuf.Append(s.zetaCol)
		zetaRowBuf.Append(s.zetaRow)
		gammaBuf.Append(s.gamma)
	}
	record()

	status := kernel.Status{Kind: kernel.MaxIterReached}
	nzerosOld := 0

	for iter := 0; iter < cfg.MaxIter; iter++ {
		if nzerosOld >= numCol+numRow {
			status = kernel.Status{Kind: kernel.Completed}
			break
		}
		zetaCol, zetaRow, err := step(op, gCol, gRow, x, cfg, s)
		if err != nil {
			return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, kernel.Status{Kind: kernel.MaxIterReached}), err
		}
		nzerosNew := sumInts(zetaCol) + sumInts(zetaRow)
		s.zetaCol, s.zetaRow = zetaCol, zetaRow

		if nzerosNew != nzerosOld || iter%cfg.Keep == 0 {
			record()
		}
		nzerosOld = nzerosNew

		if iter+1 >= cfg.BurnIn {
			s.gamma *= cfg.T
		}

		if nzerosNew >= numCol+numRow {
			status = kernel.Status{Kind: kernel.Completed}
			break
		}
		if (iter+1)%cfg.CheckInterval() == 0 && cancel.Requested() {
			status = kernel.Status{Kind: kernel.Cancelled}
			break
		}
	}

	return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, status), nil
}

type vizPhase int

const (
	phaseBurnIn vizPhase = iota
	phaseCoarse
	phaseBisect
	phaseDone
)

// RunViz executes the coupled back-tracking variant: the shared γ is
// adjusted so that each outer step past burn-in introduces exactly one
// new fusion in either direction combined, falling back to a
// MultiMerge-tagged commit when bisection cannot isolate one.
func RunViz(op *linalg.CombinedOperator, gCol, gRow *graph.Graph, x, uInit []float64, cfg kernel.Config, cancel *kernel.Cancel) (*Path, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n, p := gCol.N(), gCol.P()
	numCol, numRow := gCol.NumEdges(), gRow.NumEdges()
	total := numCol + numRow
	if len(x) != n*p {
		return nil, &kernel.InvalidInputError{Msg: "x length must equal n*p"}
	}
	if len(uInit) != n*p {
		return nil, &kernel.InvalidInputError{Msg: "u_init length must equal n*p"}
	}

	initialCap := int(math.Ceil(1.5 * float64(n+p)))
	uBuf := kernel.NewPathBuffer(n*p, initialCap)
	vColBuf := kernel.NewPathBuffer(numCol*p, initialCap)
	vRowBuf := kernel.NewPathBuffer(numRow*n, initialCap)
	zetaColBuf := kernel.NewIntPathBuffer(numCol, initialCap)
	zetaRowBuf := kernel.NewIntPathBuffer(numRow, initialCap)
	gammaBuf := kernel.NewScalarPathBuffer(initialCap)

	s := newBiState(n, p, numCol, numRow, uInit, cfg.Gamma0)
	record := func() {
		uBuf.Append(s.uObs)
		vColBuf.Append(s.vCol)
		vRowBuf.Append(s.vRow)
		zetaColBuf.Append(s.zetaCol)
		zetaRowBuf.Append(s.zetaRow)
		gammaBuf.Append(s.gamma)
	}
	record()

	nzerosOld := 0
	var events []int
	commit := func(trial *biState, zetaCol, zetaRow []int, multiMerge bool) {
		s = trial
		s.zetaCol, s.zetaRow = zetaCol, zetaRow
		record()
		nzerosOld = sumInts(zetaCol) + sumInts(zetaRow)
		if multiMerge {
			events = append(events, uBuf.Cols()-1)
		}
	}

	phase := phaseBurnIn
	burnInSteps := 0
	stepsTaken := 0
	var finalStatus *kernel.Status

	if nzerosOld >= total {
		phase = phaseDone
	}

	for phase != phaseDone {
		if stepsTaken >= cfg.MaxIter {
			st := kernel.Status{Kind: kernel.MaxIterReached}
			finalStatus = &st
			break
		}

		switch phase {
		case phaseBurnIn:
			trial := s.clone()
			zetaCol, zetaRow, err := step(op, gCol, gRow, x, cfg, trial)
			stepsTaken++
			if err != nil {
				return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, kernel.Status{Kind: kernel.MaxIterReached}), err
			}
			commit(trial, zetaCol, zetaRow, false)
			burnInSteps++
			if nzerosOld >= total {
				phase = phaseDone
				break
			}
			if burnInSteps >= cfg.BurnIn {
				phase = phaseCoarse
				if cancel.Requested() {
					st := kernel.Status{Kind: kernel.Cancelled}
					finalStatus = &st
				}
			}

		case phaseCoarse:
			if finalStatus != nil {
				phase = phaseDone
				break
			}
			trial := s.clone()
			trial.gamma = s.gamma * cfg.VizTCoarse
			zetaCol, zetaRow, err := step(op, gCol, gRow, x, cfg, trial)
			stepsTaken++
			if err != nil {
				return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, kernel.Status{Kind: kernel.MaxIterReached}), err
			}
			delta := sumInts(zetaCol) + sumInts(zetaRow) - nzerosOld
			if delta == 0 {
				commit(trial, zetaCol, zetaRow, false)
				if nzerosOld >= total {
					phase = phaseDone
				}
				continue
			}
			phase = phaseBisect
			if cancel.Requested() {
				st := kernel.Status{Kind: kernel.Cancelled}
				finalStatus = &st
				phase = phaseDone
			}

		case phaseBisect:
			preGamma := s.gamma
			gammaTrial := preGamma
			budget := cfg.BisectBudget()
			committed := false
			for attempt := 0; attempt < budget && stepsTaken < cfg.MaxIter; attempt++ {
				gammaTrial *= cfg.VizTSwitch
				trial := s.clone()
				trial.gamma = gammaTrial
				zetaCol, zetaRow, err := step(op, gCol, gRow, x, cfg, trial)
				stepsTaken++
				if err != nil {
					return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, kernel.Status{Kind: kernel.MaxIterReached}), err
				}
				delta := sumInts(zetaCol) + sumInts(zetaRow) - nzerosOld
				if delta == 0 {
					continue
				}
				if delta == 1 {
					commit(trial, zetaCol, zetaRow, false)
				} else {
					commit(trial, zetaCol, zetaRow, true)
				}
				committed = true
				break
			}
			if !committed {
				trial := s.clone()
				trial.gamma = s.gamma * cfg.VizTCoarse
				zetaCol, zetaRow, err := step(op, gCol, gRow, x, cfg, trial)
				stepsTaken++
				if err != nil {
					return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, kernel.Status{Kind: kernel.MaxIterReached}), err
				}
				commit(trial, zetaCol, zetaRow, true)
			}
			if nzerosOld >= total {
				phase = phaseDone
			} else {
				phase = phaseCoarse
			}
			if cancel.Requested() {
				st := kernel.Status{Kind: kernel.Cancelled}
				finalStatus = &st
				phase = phaseDone
			}
		}
	}

	var status kernel.Status
	switch {
	case finalStatus != nil:
		status = *finalStatus
	case len(events) > 0:
		status = kernel.Status{Kind: kernel.MultiMerge, Events: events}
	case nzerosOld >= total:
		status = kernel.Status{Kind: kernel.Completed}
	default:
		status = kernel.Status{Kind: kernel.MaxIterReached}
	}

	return buildPath(uBuf, vColBuf, vRowBuf, zetaColBuf, zetaRowBuf, gammaBuf, n, p, numCol, numRow, status), nil
}

func buildPath(uBuf, vColBuf, vRowBuf *kernel.PathBuffer, zetaColBuf, zetaRowBuf *kernel.IntPathBuffer, gammaBuf *kernel.ScalarPathBuffer, n, p, numCol, numRow int, status kernel.Status) *Path {
	return &Path{
		UPath:       uBuf.Compact(),
		VColPath:    vColBuf.Compact(),
		VRowPath:    vRowBuf.Compact(),
		ZetaColPath: zetaColBuf.Compact(),
		ZetaRowPath: zetaRowBuf.Compact(),
		GammaPath:   gammaBuf.Values(),
		Cols:        uBuf.Cols(),
		N:           n,
		P:           p,
		NumEdgesCol: numCol,
		NumEdgesRow: numRow,
		Status:      status,
	}
}
