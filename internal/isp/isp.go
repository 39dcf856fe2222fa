// Package isp implements the Iterate Smoothing Post-processor: a pure
// function that turns a raw, irregularly-sampled ζ/V/U/γ path into a
// monotone, deduplicated, piecewise-constant-interpolatable path usable
// as a dendrogram's event list.
package isp

import "sort"

// Raw is the uncompacted path handed to Smooth. Zeta, U and V are
// column-major (column k occupies [k*rows, (k+1)*rows) in the
// corresponding row count); Gamma has one entry per column.
type Raw struct {
	Zeta     []int
	ZetaRows int
	U        []float64
	URows    int
	V        []float64
	VRows    int
	Gamma    []float64
	Cols     int
}

// Path is Smooth's output: the retained columns only, plus OrigCol
// recording which raw column each retained column came from (needed for
// piecewise-constant interpolation at an arbitrary raw iteration).
type Path struct {
	Zeta     []int
	ZetaRows int
	U        []float64
	URows    int
	V        []float64
	VRows    int
	Gamma    []float64
	OrigCol  []int
	Cols     int
}

// Smooth enforces the ISP's contract on a raw path:
//   - monotonicity: the retained Σζ sequence is strictly increasing
//   - deduplication: of any run of raw columns with equal Σζ, only the
//     first (the iterate at which that fusion count first appeared) is
//     kept
//   - a raw column whose Σζ is lower than the running maximum (a
//     transient re-unfusion) is dropped rather than breaking
//     monotonicity
//
// The first raw column is always retained as the path's baseline even
// when Σζ = 0.
func Smooth(raw Raw) Path {
	if raw.Cols == 0 {
		return Path{ZetaRows: raw.ZetaRows, URows: raw.URows, VRows: raw.VRows}
	}

	var keep []int
	best := -1
	for k := 0; k < raw.Cols; k++ {
		n := colSum(raw.Zeta, raw.ZetaRows, k)
		if n > best || k == 0 {
			keep = append(keep, k)
			if n > best {
				best = n
			}
		}
	}

	out := Path{
		ZetaRows: raw.ZetaRows,
		URows:    raw.URows,
		VRows:    raw.VRows,
		OrigCol:  keep,
		Cols:     len(keep),
		Zeta:     make([]int, len(keep)*raw.ZetaRows),
		U:        make([]float64, len(keep)*raw.URows),
		V:        make([]float64, len(keep)*raw.VRows),
		Gamma:    make([]float64, len(keep)),
	}
	for j, k := range keep {
		copy(out.Zeta[j*raw.ZetaRows:(j+1)*raw.ZetaRows], raw.Zeta[k*raw.ZetaRows:(k+1)*raw.ZetaRows])
		copy(out.U[j*raw.URows:(j+1)*raw.URows], raw.U[k*raw.URows:(k+1)*raw.URows])
		copy(out.V[j*raw.VRows:(j+1)*raw.VRows], raw.V[k*raw.VRows:(k+1)*raw.VRows])
		out.Gamma[j] = raw.Gamma[k]
	}
	return out
}

func colSum(zeta []int, rows, k int) int {
	s := 0
	for i := 0; i < rows; i++ {
		s += zeta[k*rows+i]
	}
	return s
}

// ZetaColumn returns a view of the j-th retained ζ column.
func (p Path) ZetaColumn(j int) []int { return p.Zeta[j*p.ZetaRows : (j+1)*p.ZetaRows] }

// UColumn returns a view of the j-th retained U column.
func (p Path) UColumn(j int) []float64 { return p.U[j*p.URows : (j+1)*p.URows] }

// VColumn returns a view of the j-th retained V column.
func (p Path) VColumn(j int) []float64 { return p.V[j*p.VRows : (j+1)*p.VRows] }

// At returns the retained-column index whose state holds at raw column
// origIdx (the most recent retained column at or before it), the
// piecewise-constant interpolation a dendrogram builder needs to map an
// arbitrary raw iteration back onto the smoothed path.
func (p Path) At(origIdx int) int {
	idx := sort.Search(len(p.OrigCol), func(i int) bool { return p.OrigCol[i] > origIdx })
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// Monotone reports whether the retained ζ sequence strictly increases in
// total fused count and γ is non-decreasing, as required by the ISP
// contract.
func (p Path) Monotone() bool {
	prevZeta, prevGamma := -1, -1.0
	for j := 0; j < p.Cols; j++ {
		n := colSum(p.Zeta, p.ZetaRows, j)
		if n <= prevZeta && j > 0 {
			return false
		}
		if j > 0 && p.Gamma[j] < prevGamma {
			return false
		}
		prevZeta, prevGamma = n, p.Gamma[j]
	}
	return true
}

// FullyFused reports whether the last retained column has every edge
// fused, i.e. the kernel ran to completion rather than stopping early.
func (p Path) FullyFused() bool {
	if p.Cols == 0 {
		return p.ZetaRows == 0
	}
	return colSum(p.Zeta, p.ZetaRows, p.Cols-1) == p.ZetaRows
}
