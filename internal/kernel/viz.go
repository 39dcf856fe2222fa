package kernel

import (
	"fusionpath/internal/linalg"
)

// vizState is the VIZ back-tracking state machine's current phase.
type vizState int

const (
	vizBurnIn vizState = iota
	vizCoarse
	vizBisect
	vizDone
)

// RunViz executes the CARP-VIZ back-tracking variant: it adaptively
// shrinks the γ step so that each outer step once burn-in ends
// introduces exactly one new fusion (or is explicitly tagged MultiMerge
// when bisection cannot isolate one).
func RunViz(op *linalg.Operator, x []float64, uInit, vInit []float64, cfg Config, cancel *Cancel) (*Path, error) {
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

	initialCap := int(1.5*float64(n)) + 1
	uBuf := NewPathBuffer(n*p, initialCap)
	vBuf := NewPathBuffer(numEdges*p, initialCap)
	zetaBuf := NewIntPathBuffer(numEdges, initialCap)
	gammaBuf := NewScalarPathBuffer(initialCap)

	s := newState(n, p, numEdges, uInit, vInit, cfg.Gamma0)
	uBuf.Append(s.u)
	vBuf.Append(s.v)
	zetaBuf.Append(s.zeta)
	gammaBuf.Append(s.gamma)

	nzerosOld := 0
	var events []int
	commit := func(trial *state, zeta []int, multiMerge bool) {
		s = trial
		s.zeta = zeta
		uBuf.Append(s.u)
		vBuf.Append(s.v)
		zetaBuf.Append(s.zeta)
		gammaBuf.Append(s.gamma)
		nzerosOld = sumZeta(zeta)
		if multiMerge {
			events = append(events, uBuf.Cols()-1)
		}
	}

	phase := vizBurnIn
	burnInSteps := 0
	stepsTaken := 0
	var finalStatus *Status

	if nzerosOld >= numEdges {
		phase = vizDone
	}

	for phase != vizDone {
		if stepsTaken >= cfg.MaxIter {
			st := Status{Kind: MaxIterReached}
			finalStatus = &st
			break
		}

		switch phase {
		case vizBurnIn:
			trial := s.clone()
			// fixed gamma through burn-in
			zeta, err := step(op, g, x, cfg, trial)
			stepsTaken++
			if err != nil {
				return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, Status{Kind: MaxIterReached}), err
			}
			commit(trial, zeta, false)
			burnInSteps++
			if nzerosOld >= numEdges {
				phase = vizDone
				break
			}
			if burnInSteps >= cfg.BurnIn {
				phase = vizCoarse
				if cancel.Requested() {
					st := Status{Kind: Cancelled}
					finalStatus = &st
				}
			}

		case vizCoarse:
			if finalStatus != nil {
				phase = vizDone
				break
			}
			trial := s.clone()
			trial.gamma = s.gamma * cfg.VizTCoarse
			zeta, err := step(op, g, x, cfg, trial)
			stepsTaken++
			if err != nil {
				return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, Status{Kind: MaxIterReached}), err
			}
			delta := sumZeta(zeta) - nzerosOld
			if delta == 0 {
				commit(trial, zeta, false)
				if nzerosOld >= numEdges {
					phase = vizDone
				}
				continue
			}
			// delta != 0: roll back (discard trial) and bisect.
			phase = vizBisect
			if cancel.Requested() {
				st := Status{Kind: Cancelled}
				finalStatus = &st
				phase = vizDone
			}

		case vizBisect:
			preGamma := s.gamma
			gammaTrial := preGamma
			budget := cfg.BisectBudget()
			committed := false
			for attempt := 0; attempt < budget && stepsTaken < cfg.MaxIter; attempt++ {
				gammaTrial *= cfg.VizTSwitch
				trial := s.clone()
				trial.gamma = gammaTrial
				zeta, err := step(op, g, x, cfg, trial)
				stepsTaken++
				if err != nil {
					return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, Status{Kind: MaxIterReached}), err
				}
				delta := sumZeta(zeta) - nzerosOld
				if delta == 0 {
					continue
				}
				if delta == 1 {
					commit(trial, zeta, false)
				} else {
					commit(trial, zeta, true)
				}
				committed = true
				break
			}
			if !committed {
				// Budget exhausted without isolating a single fusion;
				// fall back to the coarse expansion that is guaranteed
				// to fuse at least one edge, tagged as a multi-merge.
				trial := s.clone()
				trial.gamma = s.gamma * cfg.VizTCoarse
				zeta, err := step(op, g, x, cfg, trial)
				stepsTaken++
				if err != nil {
					return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, Status{Kind: MaxIterReached}), err
				}
				commit(trial, zeta, true)
			}
			if nzerosOld >= numEdges {
				phase = vizDone
			} else {
				phase = vizCoarse
			}
			if cancel.Requested() {
				st := Status{Kind: Cancelled}
				finalStatus = &st
				phase = vizDone
			}
		}
	}

	var status Status
	switch {
	case finalStatus != nil:
		status = *finalStatus
	case len(events) > 0:
		status = Status{Kind: MultiMerge, Events: events}
	case nzerosOld >= numEdges:
		status = Status{Kind: Completed}
	default:
		status = Status{Kind: MaxIterReached}
	}

	return buildPath(uBuf, vBuf, zetaBuf, gammaBuf, n, p, numEdges, status), nil
}
