package fusionpath

import (
	"fusionpath/internal/bikernel"
	"fusionpath/internal/graph"
	"fusionpath/internal/linalg"
)

// RunCBASS runs the coupled row/column path kernel (CBASS) behind convex
// biclustering: edgesRow fuses variable pairs, edgesCol fuses observation
// pairs, and both share the single primal uInit (length n·p, obs-major).
func RunCBASS(x []float64, n, p int, edgesRow, edgesCol []Edge, uInit []float64, cfg Config, cancel *Cancel) (*BiPath, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gCol, err := graph.New(n, p, edgesCol)
	if err != nil {
		return nil, &InvalidInputError{Msg: "col edges: " + err.Error()}
	}
	gRow, err := graph.New(p, n, edgesRow)
	if err != nil {
		return nil, &InvalidInputError{Msg: "row edges: " + err.Error()}
	}
	op, err := linalg.FactorCombined(gCol, gRow, cfg.Rho)
	if err != nil {
		return nil, err
	}
	if cfg.Variant == Viz {
		return bikernel.RunViz(op, gCol, gRow, x, uInit, cfg, cancel)
	}
	return bikernel.Run(op, gCol, gRow, x, uInit, cfg, cancel)
}
