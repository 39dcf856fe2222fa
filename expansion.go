package fusionpath

import (
	"fusionpath/internal/graph"
	"fusionpath/pkg/preprocess"
	"fusionpath/pkg/weights"
)

// NewEdgeGraph validates an edge list against (n, p) without building a
// full path-tracking run; useful for validating upstream weight
// construction before paying for a factorization.
func NewEdgeGraph(n, p int, edges []Edge) error {
	_, err := graph.New(n, p, edges)
	return err
}

// GaussianKernelWeights returns the dense Gaussian-kernel weight for
// every pair of the n·p obs-major observation matrix x.
func GaussianKernelWeights(x []float64, n, p int, phi float64) []Edge {
	return weights.GaussianKernelWeights(x, n, p, phi)
}

// SparsifyKNN keeps, from a dense weight list, the union of each point's
// k nearest neighbors.
func SparsifyKNN(x []float64, n, p int, full []Edge, k int) []Edge {
	return weights.SparsifyKNN(x, n, p, full, k)
}

// MinimumKForConnectivity returns the smallest k that yields a single
// connected component over the n observations.
func MinimumKForConnectivity(x []float64, n, p int) (int, error) {
	return weights.MinimumKForConnectivity(x, n, p)
}

// CenterColumns subtracts each variable's per-column mean.
func CenterColumns(x []float64, n, p int) []float64 {
	return preprocess.CenterColumns(x, n, p)
}

// ScaleColumns divides each variable by its sample standard deviation.
func ScaleColumns(x []float64, n, p int) []float64 {
	return preprocess.ScaleColumns(x, n, p)
}
