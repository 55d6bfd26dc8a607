package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/trendscope/trendscope/internal/trend"
)

// trendingQuery is the probe text used to surface generally trending
// records when the caller supplies no query of their own.
const trendingQuery = "trending popular emerging viral new"

const (
	defaultTrendingTopK     = 20
	defaultTrendingMinScore = 0.5

	categoryScanLimit = 1000
	topTrendsReported = 10
	highScoreCutoff   = 0.7
)

// TrendingOptions narrows a trending-topics request.
type TrendingOptions struct {
	TopK       int
	Category   trend.Category
	MinScore   *float64
	AfterDate  string
	BeforeDate string
}

// Trending returns the highest-scoring trends matching a generic
// trending probe, ordered by trend score rather than retrieval rank.
func (x *Index) Trending(ctx context.Context, opts TrendingOptions) ([]Result, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTrendingTopK
	}
	minScore := defaultTrendingMinScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}

	results, err := x.Search(ctx, trendingQuery, Options{
		TopK:       topK * 2,
		Category:   opts.Category,
		MinScore:   &minScore,
		AfterDate:  opts.AfterDate,
		BeforeDate: opts.BeforeDate,
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metadata.Score > results[j].Metadata.Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// CategoryAnalysis summarizes every trend in one category.
type CategoryAnalysis struct {
	Category        trend.Category     `json:"category"`
	TotalTrends     int                `json:"total_trends"`
	ScoreStats      CategoryScoreStats `json:"score_stats"`
	RunsRepresented int                `json:"runs_represented"`
	TopTrends       []Result           `json:"top_trends"`
}

// CategoryScoreStats summarizes the score distribution of a category.
type CategoryScoreStats struct {
	Average        float64 `json:"average"`
	Max            float64 `json:"max"`
	Min            float64 `json:"min"`
	HighScoreCount int     `json:"high_score_count"`
}

// AnalyzeCategory scans a whole category and reports score statistics,
// run coverage and the top trends by score.
func (x *Index) AnalyzeCategory(ctx context.Context, category trend.Category) (*CategoryAnalysis, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("search: unknown category %q", category)
	}

	// An empty query scans broadly; the category filter does the work.
	results, err := x.Search(ctx, "", Options{
		TopK:     categoryScanLimit,
		Category: category,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("search: no trends found for category %q", category)
	}

	stats := CategoryScoreStats{
		Min: results[0].Metadata.Score,
		Max: results[0].Metadata.Score,
	}
	runs := make(map[string]bool)
	var sum float64
	for _, result := range results {
		score := result.Metadata.Score
		sum += score
		if score < stats.Min {
			stats.Min = score
		}
		if score > stats.Max {
			stats.Max = score
		}
		if score > highScoreCutoff {
			stats.HighScoreCount++
		}
		runs[result.Metadata.RunID] = true
	}
	stats.Average = sum / float64(len(results))

	top := make([]Result, len(results))
	copy(top, results)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Metadata.Score > top[j].Metadata.Score
	})
	if len(top) > topTrendsReported {
		top = top[:topTrendsReported]
	}

	return &CategoryAnalysis{
		Category:        category,
		TotalTrends:     len(results),
		ScoreStats:      stats,
		RunsRepresented: len(runs),
		TopTrends:       top,
	}, nil
}
