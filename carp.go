package fusionpath

import (
	"fusionpath/internal/graph"
	"fusionpath/internal/kernel"
	"fusionpath/internal/linalg"
)

// RunCARP runs the path-tracking ADMM kernel (CARP, or CARP-VIZ when
// cfg.Variant is Viz) over the observation matrix x (n·p, obs-major) and
// the fusion graph described by edges. uInit and vInit seed U and V; a
// zero-valued V is the usual choice when there is no warm start.
func RunCARP(x []float64, n, p int, edges []Edge, uInit, vInit []float64, cfg Config, cancel *Cancel) (*Path, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := graph.New(n, p, edges)
	if err != nil {
		return nil, &InvalidInputError{Msg: err.Error()}
	}
	op, err := linalg.Factor(g, cfg.Rho)
	if err != nil {
		return nil, err
	}
	if cfg.Variant == Viz {
		return kernel.RunViz(op, x, uInit, vInit, cfg, cancel)
	}
	return kernel.Run(op, x, uInit, vInit, cfg, cancel)
}
