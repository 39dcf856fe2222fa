package isp

import "testing"

func buildRaw(zetaRows int, zetaCols [][]int, gamma []float64) Raw {
	cols := len(zetaCols)
	zeta := make([]int, cols*zetaRows)
	u := make([]float64, cols) // URows=1, one synthetic value per column
	v := make([]float64, cols)
	for k, col := range zetaCols {
		copy(zeta[k*zetaRows:(k+1)*zetaRows], col)
		u[k] = float64(k)
		v[k] = float64(k) * 10
	}
	return Raw{
		Zeta: zeta, ZetaRows: zetaRows,
		U: u, URows: 1,
		V: v, VRows: 1,
		Gamma: gamma, Cols: cols,
	}
}

func TestSmoothDropsDuplicatesAndReUnfusions(t *testing.T) {
	// columns: sigma-zeta = 0, 0, 1, 1, 0 (transient re-unfusion), 2
	raw := buildRaw(2, [][]int{
		{0, 0}, {0, 0}, {1, 0}, {1, 0}, {0, 0}, {1, 1},
	}, []float64{1, 1.1, 1.21, 1.331, 1.4641, 1.61051})

	path := Smooth(raw)

	wantOrig := []int{0, 2, 5}
	if path.Cols != len(wantOrig) {
		t.Fatalf("Cols = %d, want %d", path.Cols, len(wantOrig))
	}
	for i, w := range wantOrig {
		if path.OrigCol[i] != w {
			t.Fatalf("OrigCol[%d] = %d, want %d", i, path.OrigCol[i], w)
		}
	}
	if !path.Monotone() {
		t.Fatal("Monotone() = false, want true")
	}
	if !path.FullyFused() {
		t.Fatal("FullyFused() = false, want true")
	}
}

func TestSmoothKeepsFirstOccurrenceOfARun(t *testing.T) {
	raw := buildRaw(1, [][]int{{0}, {0}, {1}, {1}, {1}}, []float64{1, 1, 1, 1, 1})
	path := Smooth(raw)
	if path.Cols != 2 {
		t.Fatalf("Cols = %d, want 2", path.Cols)
	}
	if path.OrigCol[0] != 0 || path.OrigCol[1] != 2 {
		t.Fatalf("OrigCol = %v, want [0 2]", path.OrigCol)
	}
	// U/V at the retained columns should reflect the first occurrence of
	// each run, not the last.
	if path.UColumn(1)[0] != 2 {
		t.Fatalf("UColumn(1)[0] = %v, want 2", path.UColumn(1)[0])
	}
}

func TestSmoothEmptyRaw(t *testing.T) {
	raw := Raw{ZetaRows: 3, URows: 1, VRows: 1}
	path := Smooth(raw)
	if path.Cols != 0 {
		t.Fatalf("Cols = %d, want 0", path.Cols)
	}
	if !path.Monotone() {
		t.Fatal("Monotone() on empty path = false, want true")
	}
	if path.FullyFused() {
		t.Fatal("FullyFused() on an empty path over 3 edges = true, want false (ZetaRows != 0)")
	}
}

func TestAtPiecewiseConstantInterpolation(t *testing.T) {
	raw := buildRaw(1, [][]int{{0}, {0}, {1}, {1}, {2}}, []float64{1, 1, 1, 1, 1})
	path := Smooth(raw) // retained raw columns: 0, 2, 4

	cases := []struct {
		origIdx int
		want    int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 1}, {4, 2},
	}
	for _, c := range cases {
		if got := path.At(c.origIdx); got != c.want {
			t.Fatalf("At(%d) = %d, want %d", c.origIdx, got, c.want)
		}
	}
}

func TestFullyFusedFalseWhenIncomplete(t *testing.T) {
	raw := buildRaw(3, [][]int{{0, 0, 0}, {1, 0, 0}}, []float64{1, 1.1})
	path := Smooth(raw)
	if path.FullyFused() {
		t.Fatal("FullyFused() = true, want false (only 1 of 3 edges fused)")
	}
}
