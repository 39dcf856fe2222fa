package preprocess

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestCenterColumnsZeroMean(t *testing.T) {
	// 4 observations, 2 variables.
	x := []float64{1, 10, 2, 20, 3, 30, 4, 40}
	out := CenterColumns(x, 4, 2)
	for j := 0; j < 2; j++ {
		col := make([]float64, 4)
		for i := 0; i < 4; i++ {
			col[i] = out[i*2+j]
		}
		mu := stat.Mean(col, nil)
		if math.Abs(mu) > 1e-9 {
			t.Fatalf("column %d mean = %v, want ~0", j, mu)
		}
	}
}

func TestCenterColumnsPreservesShape(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	out := CenterColumns(x, 3, 2)
	if len(out) != len(x) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(x))
	}
}

func TestScaleColumnsUnitVariance(t *testing.T) {
	x := []float64{1, 100, 2, 200, 3, 300, 4, 400, 5, 500}
	out := ScaleColumns(x, 5, 2)
	for j := 0; j < 2; j++ {
		col := make([]float64, 5)
		for i := 0; i < 5; i++ {
			col[i] = out[i*2+j]
		}
		v := stat.Variance(col, nil)
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("column %d variance = %v, want ~1", j, v)
		}
	}
}

func TestScaleColumnsZeroVarianceUntouched(t *testing.T) {
	x := []float64{5, 1, 5, 2, 5, 3}
	out := ScaleColumns(x, 3, 2)
	for i := 0; i < 3; i++ {
		if out[i*2] != 5 {
			t.Fatalf("zero-variance column element %d = %v, want unchanged 5", i, out[i*2])
		}
	}
}
