package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"fusionpath"
	"fusionpath/internal/isp"
	"fusionpath/pkg/config"
)

func main() {
	inputPath := flag.String("input", "", "CSV file holding the n x p observation matrix (one row per observation)")
	configPath := flag.String("config", "", "YAML configuration file (defaults are used when omitted)")
	outputPath := flag.String("output", "fusion_events.csv", "CSV file to write the ISP-smoothed fusion event path to")
	mode := flag.String("mode", "carp", "\"carp\" for clustering or \"cbass\" for biclustering")
	center := flag.Bool("center", true, "center each variable before weight construction")
	scale := flag.Bool("scale", false, "scale each variable to unit variance before weight construction")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	kcfg, err := cfg.ToKernelConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	x, n, p, err := readMatrix(*inputPath)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("ALGORITHMIC REGULARIZATION PATHS FOR CONVEX CLUSTERING AND BICLUSTERING")
	fmt.Println("================================")
	fmt.Printf("Loaded %d observations of %d variables from %s\n", n, p, *inputPath)

	if *center {
		x = fusionpath.CenterColumns(x, n, p)
	}
	if *scale {
		x = fusionpath.ScaleColumns(x, n, p)
	}

	k := cfg.Weights.K
	if k <= 0 {
		k, err = fusionpath.MinimumKForConnectivity(x, n, p)
		if err != nil {
			log.Fatalf("failed to find a connecting k: %v", err)
		}
		fmt.Printf("Chose k=%d nearest neighbors for connectivity\n", k)
	}

	fullCol := fusionpath.GaussianKernelWeights(x, n, p, cfg.Weights.Phi)
	edgesCol := fusionpath.SparsifyKNN(x, n, p, fullCol, k)
	fmt.Printf("Built observation fusion graph: %d edges (from %d dense pairs)\n", len(edgesCol), len(fullCol))

	uInit := append([]float64(nil), x...)
	startTime := time.Now()

	switch *mode {
	case "carp":
		vInit := make([]float64, len(edgesCol)*p)
		path, err := fusionpath.RunCARP(x, n, p, edgesCol, uInit, vInit, kcfg, nil)
		if err != nil {
			log.Fatalf("RunCARP failed: %v", err)
		}
		elapsed := time.Since(startTime)
		fmt.Printf("\nPath tracking finished in %.2fs: status=%s, %d recorded columns\n", elapsed.Seconds(), path.Status, path.Cols)

		smoothed := isp.Smooth(isp.Raw{
			Zeta: path.ZetaPath, ZetaRows: path.NumEdges,
			U: path.UPath, URows: n * p,
			V: path.VPath, VRows: path.NumEdges * p,
			Gamma: path.GammaPath, Cols: path.Cols,
		})
		fmt.Printf("ISP: %d fusion events, monotone=%v, fully fused=%v\n", smoothed.Cols, smoothed.Monotone(), smoothed.FullyFused())
		if err := writeEvents(*outputPath, smoothed); err != nil {
			log.Fatalf("failed to write output: %v", err)
		}

	case "cbass":
		xT := transpose(x, n, p)
		fullRow := fusionpath.GaussianKernelWeights(xT, p, n, cfg.Weights.Phi)
		kRow := k
		if kRow >= p {
			kRow = p - 1
		}
		edgesRow := fusionpath.SparsifyKNN(xT, p, n, fullRow, kRow)
		fmt.Printf("Built variable fusion graph: %d edges (from %d dense pairs)\n", len(edgesRow), len(fullRow))

		biPath, err := fusionpath.RunCBASS(x, n, p, edgesRow, edgesCol, uInit, kcfg, nil)
		if err != nil {
			log.Fatalf("RunCBASS failed: %v", err)
		}
		elapsed := time.Since(startTime)
		fmt.Printf("\nBiclustering path tracking finished in %.2fs: status=%s, %d recorded columns\n", elapsed.Seconds(), biPath.Status, biPath.Cols)

	default:
		log.Fatalf("unknown mode %q (want \"carp\" or \"cbass\")", *mode)
	}
}

func transpose(x []float64, n, p int) []float64 {
	out := make([]float64, n*p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			out[j*n+i] = x[i*p+j]
		}
	}
	return out
}

// readMatrix reads a headerless CSV file into an n·p obs-major matrix.
func readMatrix(path string) (x []float64, n, p int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(records) == 0 {
		return nil, 0, 0, fmt.Errorf("input file has no rows")
	}

	n = len(records)
	p = len(records[0])
	x = make([]float64, n*p)
	for i, row := range records {
		if len(row) != p {
			return nil, 0, 0, fmt.Errorf("row %d has %d columns, want %d", i, len(row), p)
		}
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			x[i*p+j] = v
		}
	}
	return x, n, p, nil
}

func writeEvents(path string, smoothed isp.Path) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"gamma", "n_fused"}); err != nil {
		return err
	}
	for j := 0; j < smoothed.Cols; j++ {
		zeta := smoothed.ZetaColumn(j)
		s := 0
		for _, z := range zeta {
			s += z
		}
		if err := w.Write([]string{
			strconv.FormatFloat(smoothed.Gamma[j], 'g', -1, 64),
			strconv.Itoa(s),
		}); err != nil {
			return err
		}
	}
	return nil
}
