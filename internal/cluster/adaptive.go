package cluster

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Adaptive sweep grids. DBSCAN covers a wide min-samples range with eps
// factors applied to the per-min-samples estimated radius; OPTICS covers a
// conservative min-samples range across extraction sensitivities.
var (
	dbscanSweepMinSamples = []int{3, 5, 8, 12, 20}
	dbscanSweepEpsFactors = []float64{0.5, 0.75, 1.0, 1.25}
	opticsSweepMinSamples = []int{3, 5, 8, 12}
	opticsSweepXis        = []float64{0.001, 0.01, 0.05, 0.1, 0.2}
)

// Acceptance thresholds for a sweep labeling.
const (
	maxNoiseRatio        = 0.8
	minSilhouettePoints  = 10
	fallbackEpsFactor    = 0.3
	fallbackMinSamples   = 3
	alternativesReported = 3
)

// SweepParams records the parameterization of one grid cell, plus the
// shape of the clustering it produced.
type SweepParams struct {
	Eps        float64 `json:"eps,omitempty"`
	MinSamples int     `json:"min_samples"`
	Xi         float64 `json:"xi,omitempty"`
	NClusters  int     `json:"n_clusters"`
	NoiseRatio float64 `json:"noise_ratio"`
}

// AlternativeRun is a runner-up from the adaptive sweep.
type AlternativeRun struct {
	Algorithm  string      `json:"algorithm"`
	Silhouette float64     `json:"silhouette_score"`
	Params     SweepParams `json:"parameters"`
}

// AlgorithmComparison summarizes how the adaptive winner was chosen.
type AlgorithmComparison struct {
	BestAlgorithm       string           `json:"best_algorithm"`
	BestSilhouetteScore float64          `json:"best_silhouette_score"`
	BestParameters      SweepParams      `json:"best_parameters"`
	AlgorithmsTried     int              `json:"algorithms_tried"`
	Alternatives        []AlternativeRun `json:"alternative_algorithms"`
}

// sweepCell is one (algorithm, parameters) evaluation of the grid. Cells
// read only the shared distance matrix and write only their own slot, so
// the sweep needs no locking beyond the errgroup join.
type sweepCell struct {
	algorithm string
	run       func() []int
	params    SweepParams
}

// candidate is a sweep labeling that passed acceptance and scoring.
type candidate struct {
	algorithm string
	labels    []int
	score     float64
	params    SweepParams
	cellIndex int
}

// DiscoverAdaptive sweeps both algorithms across their parameter grids,
// scores every acceptable labeling by silhouette, and analyzes the winner.
// Ties on silhouette prefer more clusters: exploratory granularity beats a
// coarse grouping with the same score.
//
// When no labeling survives acceptance, a deterministic conservative DBSCAN
// fallback (min_samples=3, eps = 0.3 x estimated) is returned
// unconditionally with algorithm name "dbscan_fallback".
func (e *Explorer) DiscoverAdaptive(ctx context.Context) (*Result, error) {
	records, embeddings, dists, err := e.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	dim := len(embeddings[0])

	if e.sweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.sweepTimeout)
		defer cancel()
	}

	cells := buildSweepCells(dists)
	candidates := e.runSweep(ctx, dists, cells)

	if len(candidates) == 0 {
		log.Printf("Warning: no valid clustering found, falling back to conservative DBSCAN")
		eps := estimateEps(dists, fallbackMinSamples) * fallbackEpsFactor
		labels := dbscan(dists, DensityClusterParams{Eps: eps, MinSamples: fallbackMinSamples})
		return analyzeClusters(records, dists, labels, dim, "dbscan_fallback"), nil
	}

	// Rank by silhouette, then cluster count, then grid position for a
	// fully deterministic selection.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].params.NClusters != candidates[j].params.NClusters {
			return candidates[i].params.NClusters > candidates[j].params.NClusters
		}
		return candidates[i].cellIndex < candidates[j].cellIndex
	})

	best := candidates[0]
	log.Printf("Best algorithm: %s with score %.3f, clusters: %d", best.algorithm, best.score, best.params.NClusters)

	result := analyzeClusters(records, dists, best.labels, dim, best.algorithm)
	result.AlgorithmComparison = &AlgorithmComparison{
		BestAlgorithm:       best.algorithm,
		BestSilhouetteScore: best.score,
		BestParameters:      best.params,
		AlgorithmsTried:     len(candidates),
		Alternatives:        topAlternatives(candidates),
	}
	return result, nil
}

// buildSweepCells materializes the full parameter grid. Eps is estimated
// once per DBSCAN min-samples value and scaled by each factor.
func buildSweepCells(dists [][]float64) []sweepCell {
	var cells []sweepCell

	for _, minSamples := range dbscanSweepMinSamples {
		baseEps := estimateEps(dists, minSamples)
		for _, factor := range dbscanSweepEpsFactors {
			eps := baseEps * factor
			params := DensityClusterParams{Eps: eps, MinSamples: minSamples}
			cells = append(cells, sweepCell{
				algorithm: "dbscan",
				run:       func() []int { return dbscan(dists, params) },
				params:    SweepParams{Eps: eps, MinSamples: minSamples},
			})
		}
	}

	for _, minSamples := range opticsSweepMinSamples {
		for _, xi := range opticsSweepXis {
			params := ReachabilityClusterParams{MinSamples: minSamples, Xi: xi}
			cells = append(cells, sweepCell{
				algorithm: "optics",
				run:       func() []int { return optics(dists, params) },
				params:    SweepParams{MinSamples: minSamples, Xi: xi},
			})
		}
	}

	return cells
}

// runSweep evaluates every cell across a worker pool. Each worker owns its
// result slot; failed or rejected cells leave their slot nil and are simply
// absent from the candidate list.
func (e *Explorer) runSweep(ctx context.Context, dists [][]float64, cells []sweepCell) []candidate {
	outcomes := make([]*candidate, len(cells))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for idx, cell := range cells {
		g.Go(func() error {
			// A cell abandoned by the deadline is just a missing
			// candidate; the sweep result is whatever completed.
			if ctx.Err() != nil {
				return nil
			}
			outcomes[idx] = evaluateCell(dists, cell, idx)
			return nil
		})
	}
	_ = g.Wait() // cells never return errors

	var candidates []candidate
	for _, o := range outcomes {
		if o != nil {
			candidates = append(candidates, *o)
		}
	}
	return candidates
}

// evaluateCell runs one grid cell and applies the acceptance criteria:
// between 2 and n/3 clusters, under 80% noise, and a computable silhouette
// over at least 10 non-noise points in at least 2 labels. Anything else is
// rejected, including cells whose run panics on degenerate input.
func evaluateCell(dists [][]float64, cell sweepCell, idx int) (out *candidate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: %s run failed for cell %d: %v", cell.algorithm, idx, r)
			out = nil
		}
	}()

	labels := cell.run()
	n := len(labels)

	nClusters, noisePoints := countClusters(labels)
	if nClusters < 2 || nClusters > n/3 {
		return nil
	}

	noiseRatio := float64(noisePoints) / float64(n)
	if noiseRatio >= maxNoiseRatio {
		return nil
	}

	if n-noisePoints <= minSilhouettePoints {
		return nil
	}

	score, err := silhouetteScore(dists, labels)
	if err != nil {
		return nil
	}

	params := cell.params
	params.NClusters = nClusters
	params.NoiseRatio = noiseRatio

	return &candidate{
		algorithm: cell.algorithm,
		labels:    labels,
		score:     score,
		params:    params,
		cellIndex: idx,
	}
}

func countClusters(labels []int) (nClusters, noisePoints int) {
	seen := make(map[int]struct{})
	for _, label := range labels {
		if label == Noise {
			noisePoints++
			continue
		}
		seen[label] = struct{}{}
	}
	return len(seen), noisePoints
}

func topAlternatives(candidates []candidate) []AlternativeRun {
	limit := min(alternativesReported, len(candidates))
	alts := make([]AlternativeRun, 0, limit)
	for _, c := range candidates[:limit] {
		alts = append(alts, AlternativeRun{
			Algorithm:  c.algorithm,
			Silhouette: c.score,
			Params:     c.params,
		})
	}
	return alts
}
