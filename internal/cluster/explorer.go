/*
Package cluster implements the semantic region discovery engine.

It discovers dense regions in the trend embedding space with density-based
clustering (DBSCAN and OPTICS over cosine distance), auto-tunes the
sensitive parameters from the data itself (k-distance elbow estimation,
adaptive multi-algorithm sweep scored by silhouette), and summarizes each
discovered region into themes and statistics.
*/
package cluster

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/trendscope/trendscope/internal/storage"
	"github.com/trendscope/trendscope/internal/trend"
)

// CorpusSource is the narrow view of the trend store the explorer needs:
// every record with its embedding, as position-aligned parallel arrays.
type CorpusSource interface {
	GetAll(ctx context.Context) (storage.Corpus, error)
}

// Explorer discovers dense semantic regions over a trend corpus.
//
// The corpus is loaded once and cached for the lifetime of the Explorer;
// it never mutates the store. Call Invalidate to pick up store changes.
type Explorer struct {
	source       CorpusSource
	sweepTimeout time.Duration
	workers      int

	mu         sync.Mutex
	records    []trend.Record
	embeddings [][]float32
	dists      [][]float64
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithSweepTimeout bounds the adaptive parameter sweep. On expiry the
// selector falls back to whatever grid cells completed. Zero disables the
// bound.
func WithSweepTimeout(d time.Duration) Option {
	return func(e *Explorer) { e.sweepTimeout = d }
}

// WithWorkers sets the parallelism of the adaptive sweep. Defaults to
// runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewExplorer creates an Explorer over the given corpus source.
func NewExplorer(source CorpusSource, opts ...Option) *Explorer {
	e := &Explorer{
		source:  source,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invalidate drops the cached corpus so the next discovery call reloads it
// from the store.
func (e *Explorer) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = nil
	e.embeddings = nil
	e.dists = nil
}

// loadCorpus returns the cached corpus, loading it from the store on first
// use. The distance matrix is computed once here and shared read-only by
// every clustering run.
func (e *Explorer) loadCorpus(ctx context.Context) ([]trend.Record, [][]float32, [][]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.records != nil {
		return e.records, e.embeddings, e.dists, nil
	}

	corpus, err := e.source.GetAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cluster: loading corpus: %w", err)
	}
	if len(corpus.IDs) == 0 {
		return nil, nil, nil, ErrEmptyCorpus
	}

	records := make([]trend.Record, len(corpus.IDs))
	for i := range corpus.IDs {
		records[i] = trend.Record{
			ID:       corpus.IDs[i],
			Text:     corpus.Documents[i],
			Category: corpus.Metadatas[i].Category,
			Score:    corpus.Metadatas[i].Score,
			Date:     corpus.Metadatas[i].Date,
			RunID:    corpus.Metadatas[i].RunID,
		}
	}

	e.records = records
	e.embeddings = corpus.Embeddings
	e.dists = distanceMatrix(corpus.Embeddings)

	log.Printf("Loaded %d trends with %d-dim embeddings", len(records), e.dimensionLocked())
	return e.records, e.embeddings, e.dists, nil
}

func (e *Explorer) dimensionLocked() int {
	if len(e.embeddings) == 0 {
		return 0
	}
	return len(e.embeddings[0])
}

// DBSCANOptions are the caller-tunable DBSCAN knobs. Zero values are
// auto-derived: min samples from embedding dimensionality, eps from the
// k-distance elbow.
type DBSCANOptions struct {
	MinSamples int
	Eps        float64
}

// DiscoverDBSCAN finds dense regions with a single DBSCAN run.
func (e *Explorer) DiscoverDBSCAN(ctx context.Context, opts DBSCANOptions) (*Result, error) {
	records, embeddings, dists, err := e.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	minSamples := opts.MinSamples
	if minSamples == 0 {
		minSamples = defaultDBSCANMinSamples(len(embeddings[0]))
	}
	eps := opts.Eps
	if eps == 0 {
		eps = estimateEps(dists, minSamples)
	}

	params := DensityClusterParams{Eps: eps, MinSamples: minSamples}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Running DBSCAN with eps=%.4f, min_samples=%d", eps, minSamples)
	labels := dbscan(dists, params)

	return analyzeClusters(records, dists, labels, len(embeddings[0]), "dbscan"), nil
}

// OPTICSOptions are the caller-tunable OPTICS knobs. Zero min samples is
// derived from corpus size; zero xi defaults to 0.05.
type OPTICSOptions struct {
	MinSamples int
	Xi         float64
}

// DiscoverOPTICS finds dense regions with a single OPTICS run.
func (e *Explorer) DiscoverOPTICS(ctx context.Context, opts OPTICSOptions) (*Result, error) {
	records, embeddings, dists, err := e.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	minSamples := opts.MinSamples
	if minSamples == 0 {
		minSamples = defaultOPTICSMinSamples(len(records))
	}
	xi := opts.Xi
	if xi == 0 {
		xi = 0.05
	}

	params := ReachabilityClusterParams{MinSamples: minSamples, Xi: xi}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Running OPTICS with min_samples=%d, xi=%g", minSamples, xi)
	labels := optics(dists, params)

	return analyzeClusters(records, dists, labels, len(embeddings[0]), "optics"), nil
}
