// Package prox implements the two proximal operators used by the V-step:
// group (L2) soft-thresholding over a whole edge block, and element-wise
// (L1) soft-thresholding.
package prox

import (
	"math"

	"fusionpath/internal/graph"

	"gonum.org/v1/gonum/floats"
)

// Penalty selects which proximal operator the V-step uses.
type Penalty int

const (
	// L2 group-soft-thresholds each edge's whole p-block together.
	L2 Penalty = iota
	// L1 soft-thresholds each coordinate of each edge's p-block
	// independently.
	L1
)

// Apply runs the configured proximal operator over y (length |E|·p) and
// writes the result into out (same length). sigma[i] = w[i]*gamma/rho is
// the per-edge threshold.
func Apply(penalty Penalty, g *graph.Graph, y []float64, gamma, rho float64, out []float64) {
	switch penalty {
	case L1:
		applyL1(g, y, gamma, rho, out)
	default:
		applyL2(g, y, gamma, rho, out)
	}
}

func applyL2(g *graph.Graph, y []float64, gamma, rho float64, out []float64) {
	p := g.P()
	for i, e := range g.Edges() {
		start, end := g.Block(i)
		block := y[start:end]
		norm := floats.Norm(block, 2)
		sigma := e.W * gamma / rho
		if norm <= sigma {
			for j := 0; j < p; j++ {
				out[start+j] = 0
			}
			continue
		}
		scale := 1 - sigma/norm
		for j := 0; j < p; j++ {
			out[start+j] = scale * block[j]
		}
	}
}

func applyL1(g *graph.Graph, y []float64, gamma, rho float64, out []float64) {
	for i, e := range g.Edges() {
		start, end := g.Block(i)
		sigma := e.W * gamma / rho
		for j := start; j < end; j++ {
			v := y[j]
			mag := math.Abs(v) - sigma
			if mag <= 0 {
				out[j] = 0
				continue
			}
			if v < 0 {
				out[j] = -mag
			} else {
				out[j] = mag
			}
		}
	}
}

// FusionIndicator returns ζ: for every edge, 1 iff its p-block in v is
// identically zero, 0 otherwise.
func FusionIndicator(g *graph.Graph, v []float64) []int {
	p := g.P()
	zeta := make([]int, g.NumEdges())
	for i := range g.Edges() {
		start, _ := g.Block(i)
		fused := true
		for j := 0; j < p; j++ {
			if v[start+j] != 0 {
				fused = false
				break
			}
		}
		if fused {
			zeta[i] = 1
		}
	}
	return zeta
}
