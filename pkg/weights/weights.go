// Package weights builds the weighted fusion graph a path-tracking run
// consumes: dense Gaussian-kernel affinities, k-NN sparsification, and a
// minimum-k connectivity search, external to the ADMM core per the
// "out of scope" collaborators.
package weights

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"fusionpath/internal/graph"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// point is a p-dimensional observation satisfying kdtree.Comparable,
// generalized to an arbitrary variable count rather than a fixed 3.
type point struct {
	coords []float64
	index  int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.coords[int(d)] - q.coords[int(d)]
}

func (p point) Dims() int { return len(p.coords) }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	sum := 0.0
	for i := range p.coords {
		d := p.coords[i] - q.coords[i]
		sum += d * d
	}
	return sum
}

// points is a collection of point satisfying kdtree.Interface.
type points []point

func (p points) Index(i int) kdtree.Comparable             { return p[i] }
func (p points) Len() int                                  { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface     { return p[start:end] }
func (p points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{points: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{points: p, Dim: d}, 100))
}

type pointPlane struct {
	points
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	return p.points[i].coords[int(p.Dim)] < p.points[j].coords[int(p.Dim)]
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{points: p.points[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }

func buildPoints(x []float64, n, p int) points {
	pts := make(points, n)
	for i := 0; i < n; i++ {
		coords := make([]float64, p)
		copy(coords, x[i*p:(i+1)*p])
		pts[i] = point{coords: coords, index: i}
	}
	return pts
}

// GaussianKernelWeights returns the dense weight for every ordered pair
// (l, m), l < m: w(l,m) = exp(-phi * ||x_l - x_m||^2). x is the n·p
// obs-major observation matrix. The O(n^2) pairwise distance computation
// is split across runtime.NumCPU() workers since rows have no sequential
// dependency.
func GaussianKernelWeights(x []float64, n, p int, phi float64) []graph.Edge {
	type pair struct {
		l, m int
		w    float64
	}

	numCores := runtime.NumCPU()
	if numCores < 1 {
		numCores = 1
	}
	results := make([][]pair, numCores)
	var wg sync.WaitGroup
	rowsPerCore := (n + numCores - 1) / numCores

	for c := 0; c < numCores; c++ {
		wg.Add(1)
		go func(coreID int) {
			defer wg.Done()
			start := coreID * rowsPerCore
			end := start + rowsPerCore
			if end > n {
				end = n
			}
			if start >= n {
				return
			}
			var local []pair
			for l := start; l < end; l++ {
				xl := x[l*p : (l+1)*p]
				for m := l + 1; m < n; m++ {
					xm := x[m*p : (m+1)*p]
					sq := 0.0
					for j := 0; j < p; j++ {
						d := xl[j] - xm[j]
						sq += d * d
					}
					local = append(local, pair{l: l, m: m, w: math.Exp(-phi * sq)})
				}
			}
			results[coreID] = local
		}(c)
	}
	wg.Wait()

	var edges []graph.Edge
	for _, local := range results {
		for _, pr := range local {
			edges = append(edges, graph.Edge{L: pr.l + 1, M: pr.m + 1, W: pr.w})
		}
	}
	return edges
}

// SparsifyKNN keeps, from a dense weight list, the edges surviving union
// k-NN sparsification: for each point, its k nearest neighbors by weight
// (largest weight = smallest distance) are kept, and an edge survives if
// either endpoint counts it among its k nearest. x, n, p identify the
// original observations (needed because full carries weights, not
// distances, and k-NN is defined per-point, not per-edge).
func SparsifyKNN(x []float64, n, p int, full []graph.Edge, k int) []graph.Edge {
	if k >= n-1 {
		return full
	}
	pts := buildPoints(x, n, p)
	tree := kdtree.New(pts, true)

	keep := make(map[[2]int]bool)
	for i := 0; i < n; i++ {
		keeper := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keeper, pts[i])
		for _, item := range keeper.Heap {
			if item.Comparable == nil {
				continue
			}
			q := item.Comparable.(point)
			if q.index == i {
				continue
			}
			l, m := i, q.index
			if l > m {
				l, m = m, l
			}
			keep[[2]int{l, m}] = true
		}
	}

	out := make([]graph.Edge, 0, len(keep))
	for _, e := range full {
		if keep[[2]int{e.L - 1, e.M - 1}] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].L != out[j].L {
			return out[i].L < out[j].L
		}
		return out[i].M < out[j].M
	})
	return out
}

// defaultPhi is the Gaussian kernel bandwidth MinimumKForConnectivity
// assumes when the caller has no reason to prefer one scale over
// another; connectivity depends only on which weights are nonzero, not
// on their magnitude, so the choice of phi does not change the answer.
const defaultPhi = 1.0

// MinimumKForConnectivity binary searches for the smallest k such that
// SparsifyKNN(GaussianKernelWeights(...), k) yields a single connected
// component over the n observations. It returns n-1 (the fully dense
// graph) if no smaller k connects the points.
func MinimumKForConnectivity(x []float64, n, p int) (int, error) {
	full := GaussianKernelWeights(x, n, p, defaultPhi)

	connected := func(k int) (bool, error) {
		sparse := SparsifyKNN(x, n, p, full, k)
		g, err := graph.New(n, p, sparse)
		if err != nil {
			return false, err
		}
		return g.Connected(), nil
	}

	lo, hi := 1, n-1
	if hi < 1 {
		return 0, nil
	}
	ok, err := connected(hi)
	if err != nil {
		return 0, err
	}
	if !ok {
		return hi, nil
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		ok, err := connected(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}
