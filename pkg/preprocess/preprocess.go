// Package preprocess centers and scales an observation matrix before
// weight construction and path tracking, the second "out of scope"
// collaborator named alongside weight construction.
package preprocess

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CenterColumns returns a new n·p obs-major matrix with each variable's
// per-column mean subtracted.
func CenterColumns(x []float64, n, p int) []float64 {
	out := make([]float64, len(x))
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = x[i*p+j]
		}
		mu := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			out[i*p+j] = x[i*p+j] - mu
		}
	}
	return out
}

// ScaleColumns returns a new n·p obs-major matrix with each variable
// divided by its sample standard deviation. A zero-variance column is
// left untouched (dividing by zero would manufacture NaNs out of a
// column that carries no information to fuse on anyway).
func ScaleColumns(x []float64, n, p int) []float64 {
	out := make([]float64, len(x))
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = x[i*p+j]
		}
		variance := stat.Variance(col, nil)
		sd := math.Sqrt(variance)
		for i := 0; i < n; i++ {
			if sd == 0 {
				out[i*p+j] = x[i*p+j]
			} else {
				out[i*p+j] = x[i*p+j] / sd
			}
		}
	}
	return out
}
