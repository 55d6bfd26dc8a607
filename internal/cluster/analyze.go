package cluster

import (
	"math"
	"sort"
	"strings"

	"github.com/trendscope/trendscope/internal/trend"
)

// maxDensityMembers caps the number of members used for the pairwise
// density score. Clusters above the cap are subsampled with a fixed stride
// so the O(k²) pass stays bounded and deterministic.
const maxDensityMembers = 200

// sampleTrendLimit and themeLimit bound the human-inspection fields.
const (
	sampleTrendLimit = 3
	themeLimit       = 5
	sampleTextRunes  = 100
)

// DenseRegion describes one discovered cluster in interpretable terms.
type DenseRegion struct {
	ClusterID            int                    `json:"cluster_id"`
	Size                 int                    `json:"size"`
	DensityScore         float64                `json:"density_score"`
	Themes               []string               `json:"themes"`
	CategoryDistribution map[trend.Category]int `json:"category_distribution"`
	ScoreStats           ScoreStats             `json:"score_stats"`
	DateRange            DateRange              `json:"date_range"`
	SampleTrends         []SampleTrend          `json:"sample_trends"`
}

// ScoreStats summarizes member trend scores.
type ScoreStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DateRange summarizes member transcript dates. Earliest and Latest are
// chosen by parsed-date order, falling back to lexicographic order for
// unparseable values.
type DateRange struct {
	Earliest    string `json:"earliest"`
	Latest      string `json:"latest"`
	UniqueDates int    `json:"unique_dates"`
}

// SampleTrend is a truncated member record for human inspection.
type SampleTrend struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Category trend.Category `json:"category"`
}

// Result is the output of a region discovery call.
type Result struct {
	Algorithm          string        `json:"algorithm"`
	TotalTrends        int           `json:"total_trends"`
	NClusters          int           `json:"n_clusters"`
	NoisePoints        int           `json:"noise_points"`
	NoiseRatio         float64       `json:"noise_ratio"`
	DenseRegions       []DenseRegion `json:"dense_regions"`
	EmbeddingDimension int           `json:"embedding_dimension"`

	// AlgorithmComparison is populated only by adaptive discovery.
	AlgorithmComparison *AlgorithmComparison `json:"algorithm_comparison,omitempty"`
}

// analyzeClusters turns raw labels into the interpretable Result. Regions
// are a strict partition of the non-noise subset and are returned sorted by
// density score, densest first.
func analyzeClusters(records []trend.Record, dists [][]float64, labels []int, dim int, algorithm string) *Result {
	n := len(records)

	members := make(map[int][]int)
	noisePoints := 0
	for i, label := range labels {
		if label == Noise {
			noisePoints++
			continue
		}
		members[label] = append(members[label], i)
	}

	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	regions := make([]DenseRegion, 0, len(clusterIDs))
	for _, id := range clusterIDs {
		regions = append(regions, buildRegion(id, members[id], records, dists))
	}

	// Presentation contract: densest regions first.
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].DensityScore > regions[j].DensityScore
	})

	return &Result{
		Algorithm:          algorithm,
		TotalTrends:        n,
		NClusters:          len(clusterIDs),
		NoisePoints:        noisePoints,
		NoiseRatio:         float64(noisePoints) / float64(n),
		DenseRegions:       regions,
		EmbeddingDimension: dim,
	}
}

func buildRegion(id int, memberIdx []int, records []trend.Record, dists [][]float64) DenseRegion {
	region := DenseRegion{
		ClusterID:            id,
		Size:                 len(memberIdx),
		DensityScore:         densityScore(memberIdx, dists),
		Themes:               extractThemes(memberIdx, records),
		CategoryDistribution: make(map[trend.Category]int),
	}

	scores := make([]float64, 0, len(memberIdx))
	dates := make([]string, 0, len(memberIdx))
	for _, i := range memberIdx {
		r := records[i]
		region.CategoryDistribution[r.Category]++
		scores = append(scores, r.Score)
		dates = append(dates, r.Date)
	}

	region.ScoreStats = summarizeScores(scores)
	region.DateRange = summarizeDates(dates)

	for _, i := range memberIdx[:min(sampleTrendLimit, len(memberIdx))] {
		region.SampleTrends = append(region.SampleTrends, SampleTrend{
			Text:     truncateText(records[i].Text, sampleTextRunes),
			Score:    records[i].Score,
			Category: records[i].Category,
		})
	}

	return region
}

// densityScore is 1 minus the mean pairwise cosine distance over the
// cluster members. 1.0 means every member points the same way; lower means
// a more diffuse region. Singleton clusters have no pairs and score 0.
func densityScore(memberIdx []int, dists [][]float64) float64 {
	if len(memberIdx) < 2 {
		return 0
	}

	idx := memberIdx
	if len(idx) > maxDensityMembers {
		stride := len(idx) / maxDensityMembers
		sampled := make([]int, 0, maxDensityMembers)
		for i := 0; i < len(idx) && len(sampled) < maxDensityMembers; i += stride {
			sampled = append(sampled, idx[i])
		}
		idx = sampled
	}

	var sum float64
	var pairs int
	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			sum += dists[idx[a]][idx[b]]
			pairs++
		}
	}

	score := 1.0 - sum/float64(pairs)
	if score < 0 {
		return 0
	}
	return score
}

// extractThemes returns up to five representative keywords: the most
// frequent lower-cased alphabetic tokens of length > 2 across member text,
// after stopword filtering. Ties break lexicographically so the output is
// stable.
func extractThemes(memberIdx []int, records []trend.Record) []string {
	counts := make(map[string]int)
	for _, i := range memberIdx {
		for _, token := range strings.Fields(strings.ToLower(records[i].Text)) {
			if len(token) <= 2 || isStopword(token) || !isAlpha(token) {
				continue
			}
			counts[token]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > themeLimit {
		words = words[:themeLimit]
	}
	return words
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

func summarizeScores(scores []float64) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}

	stats := ScoreStats{Min: scores[0], Max: scores[0]}
	var sum float64
	for _, s := range scores {
		sum += s
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	stats.Mean = sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := s - stats.Mean
		variance += d * d
	}
	stats.Std = math.Sqrt(variance / float64(len(scores)))

	return stats
}

func summarizeDates(dates []string) DateRange {
	if len(dates) == 0 {
		return DateRange{}
	}

	unique := make(map[string]struct{}, len(dates))
	earliest, latest := dates[0], dates[0]
	for _, d := range dates {
		unique[d] = struct{}{}
		if dateBefore(d, earliest) {
			earliest = d
		}
		if dateBefore(latest, d) {
			latest = d
		}
	}

	return DateRange{
		Earliest:    earliest,
		Latest:      latest,
		UniqueDates: len(unique),
	}
}

// dateBefore orders two raw date strings by parsed date, falling back to
// lexicographic comparison when both fail to parse.
func dateBefore(a, b string) bool {
	ta, errA := trend.ParseDate(a)
	tb, errB := trend.ParseDate(b)
	if errA != nil && errB != nil {
		return a < b
	}
	if errA != nil {
		return true
	}
	if errB != nil {
		return false
	}
	return ta.Before(tb)
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
