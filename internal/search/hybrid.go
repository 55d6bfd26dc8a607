package search

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/trendscope/trendscope/internal/trend"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultFusionConfig provides balanced fusion (70% semantic, 30% keyword).
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// Search runs a hybrid query and applies the option filters post-search.
// When semantic search is unavailable the result is BM25 only.
func (x *Index) Search(ctx context.Context, queryText string, opts Options) ([]Result, error) {
	return x.searchWithConfig(ctx, queryText, opts, DefaultFusionConfig)
}

func (x *Index) searchWithConfig(ctx context.Context, queryText string, opts Options, config FusionConfig) ([]Result, error) {
	topK := opts.topK()

	// Filters discard candidates, so fetch a deeper slate before
	// narrowing.
	fetchLimit := topK * 2
	if opts.filtered() {
		fetchLimit = topK * 3
	}

	bm25Results, err := x.searchBM25(queryText, fetchLimit)
	if err != nil {
		return nil, err
	}

	semanticResults, err := x.searchSemantic(ctx, queryText, fetchLimit)
	if err != nil {
		// Keyword results are still usable on their own.
		log.Printf("Warning: semantic search unavailable, using keyword results: %v", err)
		semanticResults = nil
	}

	var fused []Result
	if semanticResults == nil {
		fused = normalizeScores(bm25Results)
	} else {
		fused = fuseScores(bm25Results, semanticResults, config)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	fused = applyFilters(fused, opts)

	if len(fused) > topK {
		fused = fused[:topK]
	}

	return fused, nil
}

// fuseScores combines BM25 and semantic rankings using weighted fusion.
// Both sides are min-max normalized first so BM25 magnitudes cannot
// drown out cosine similarities.
func fuseScores(bm25Results, semanticResults []Result, config FusionConfig) []Result {
	bm25Results = normalizeScores(bm25Results)
	semanticResults = normalizeScores(semanticResults)

	bm25Map := make(map[string]Result, len(bm25Results))
	for _, result := range bm25Results {
		bm25Map[result.ID] = result
	}
	semanticMap := make(map[string]Result, len(semanticResults))
	for _, result := range semanticResults {
		semanticMap[result.ID] = result
	}

	// Semantic ordering first keeps fusion deterministic for ties.
	order := make([]string, 0, len(bm25Results)+len(semanticResults))
	seen := make(map[string]bool, len(bm25Results)+len(semanticResults))
	for _, result := range semanticResults {
		if !seen[result.ID] {
			order = append(order, result.ID)
			seen[result.ID] = true
		}
	}
	for _, result := range bm25Results {
		if !seen[result.ID] {
			order = append(order, result.ID)
			seen[result.ID] = true
		}
	}

	fused := make([]Result, 0, len(order))
	for _, id := range order {
		bm25Result, hasBM25 := bm25Map[id]
		semanticResult, hasSemantic := semanticMap[id]

		var result Result
		switch {
		case hasBM25 && hasSemantic:
			result = semanticResult
			result.Score = config.SemanticWeight*semanticResult.Score +
				config.KeywordWeight*bm25Result.Score
		case hasSemantic:
			result = semanticResult
		default:
			result = bm25Result
		}

		fused = append(fused, result)
	}

	return fused
}

// normalizeScores rescales scores to [0, 1] via min-max normalization.
func normalizeScores(results []Result) []Result {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score
	for _, result := range results {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	normalized := make([]Result, len(results))
	copy(normalized, results)

	// A flat score distribution carries no ranking signal; treat every
	// hit as a full match rather than dividing by zero.
	if maxScore == minScore {
		for i := range normalized {
			normalized[i].Score = 1.0
		}
		return normalized
	}

	for i := range normalized {
		normalized[i].Score = (normalized[i].Score - minScore) / (maxScore - minScore)
	}

	return normalized
}

// applyFilters narrows results by category, trend score and date window.
func applyFilters(results []Result, opts Options) []Result {
	if !opts.filtered() {
		return results
	}

	var after, before time.Time
	afterDate := opts.AfterDate != ""
	beforeDate := opts.BeforeDate != ""
	if afterDate {
		after = trend.ParseDateOrZero(opts.AfterDate)
	}
	if beforeDate {
		before = trend.ParseDateOrZero(opts.BeforeDate)
	}

	filtered := make([]Result, 0, len(results))
	for _, result := range results {
		if opts.Category != "" && result.Metadata.Category != opts.Category {
			continue
		}
		if opts.MinScore != nil && result.Metadata.Score < *opts.MinScore {
			continue
		}
		if afterDate || beforeDate {
			if result.Metadata.Date == "" {
				continue
			}
			date := trend.ParseDateOrZero(result.Metadata.Date)
			if afterDate && date.Before(after) {
				continue
			}
			if beforeDate && date.After(before) {
				continue
			}
		}
		filtered = append(filtered, result)
	}

	return filtered
}
