package search

import (
	"context"
	"math"
	"testing"

	"github.com/trendscope/trendscope/internal/storage"
	"github.com/trendscope/trendscope/internal/trend"
)

func TestNormalizeScores_Empty(t *testing.T) {
	normalized := normalizeScores([]Result{})

	if len(normalized) != 0 {
		t.Errorf("expected empty result, got %d items", len(normalized))
	}
}

func TestNormalizeScores_Single(t *testing.T) {
	normalized := normalizeScores([]Result{{ID: "a", Score: 0.5}})

	if len(normalized) != 1 {
		t.Fatalf("expected 1 result, got %d", len(normalized))
	}
	// Flat distribution: every hit becomes a full match.
	if normalized[0].Score != 1.0 {
		t.Errorf("expected score 1.0 for single result, got %f", normalized[0].Score)
	}
}

func TestNormalizeScores_Multiple(t *testing.T) {
	normalized := normalizeScores([]Result{
		{ID: "a", Score: 2.0},
		{ID: "b", Score: 5.0},
		{ID: "c", Score: 8.0},
	})

	want := []float64{0.0, 0.5, 1.0}
	for i, expected := range want {
		if math.Abs(normalized[i].Score-expected) > 0.001 {
			t.Errorf("result %d: expected score %f, got %f", i, expected, normalized[i].Score)
		}
	}
}

func TestNormalizeScores_DoesNotMutateInput(t *testing.T) {
	input := []Result{
		{ID: "a", Score: 2.0},
		{ID: "b", Score: 8.0},
	}
	normalizeScores(input)

	if input[0].Score != 2.0 || input[1].Score != 8.0 {
		t.Errorf("input mutated: %+v", input)
	}
}

func TestFuseScores_Empty(t *testing.T) {
	fused := fuseScores(nil, nil, DefaultFusionConfig)

	if len(fused) != 0 {
		t.Errorf("expected 0 fused results, got %d", len(fused))
	}
}

func TestFuseScores_Overlapping(t *testing.T) {
	bm25Results := []Result{
		{ID: "a", Score: 2.0},
		{ID: "b", Score: 1.0},
		{ID: "c", Score: 0.0},
	}
	semanticResults := []Result{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.5},
		{ID: "d", Score: 0.1},
	}

	fused := fuseScores(bm25Results, semanticResults, DefaultFusionConfig)

	if len(fused) != 4 {
		t.Fatalf("expected 4 fused results, got %d", len(fused))
	}

	byID := make(map[string]Result)
	for _, result := range fused {
		byID[result.ID] = result
	}

	// Both lists min-max normalize before weighting:
	// bm25 a:1.0 b:0.5 c:0.0, semantic a:1.0 b:0.5 d:0.0.
	cases := map[string]float64{
		"a": 0.7*1.0 + 0.3*1.0,
		"b": 0.7*0.5 + 0.3*0.5,
		"c": 0.0, // keyword only, normalized floor
		"d": 0.0, // semantic only, normalized floor
	}
	for id, expected := range cases {
		got, ok := byID[id]
		if !ok {
			t.Fatalf("missing fused result %s", id)
		}
		if math.Abs(got.Score-expected) > 0.001 {
			t.Errorf("%s: expected fused score %f, got %f", id, expected, got.Score)
		}
	}
}

func TestFuseScores_SemanticMetadataWins(t *testing.T) {
	bm25Results := []Result{{ID: "a", Score: 1.0}}
	semanticResults := []Result{{ID: "a", Score: 0.8, Similarity: 0.8}}

	fused := fuseScores(bm25Results, semanticResults, DefaultFusionConfig)

	if len(fused) != 1 {
		t.Fatalf("expected 1 fused result, got %d", len(fused))
	}
	if fused[0].Similarity != 0.8 {
		t.Errorf("expected similarity carried from the semantic hit, got %f", fused[0].Similarity)
	}
}

func TestDefaultFusionConfig(t *testing.T) {
	sum := DefaultFusionConfig.SemanticWeight + DefaultFusionConfig.KeywordWeight
	if math.Abs(sum-1.0) > 0.001 {
		t.Errorf("weights should sum to 1.0, got %f", sum)
	}
	if DefaultFusionConfig.SemanticWeight != 0.7 {
		t.Errorf("expected semantic weight 0.7, got %f", DefaultFusionConfig.SemanticWeight)
	}
}

func TestApplyFilters_Category(t *testing.T) {
	results := []Result{
		{ID: "a", Metadata: storage.Metadata{Category: trend.CategoryEmergingTopics, Score: 0.5}},
		{ID: "b", Metadata: storage.Metadata{Category: trend.CategoryProblemSpaces, Score: 0.5}},
	}

	filtered := applyFilters(results, Options{Category: trend.CategoryProblemSpaces})

	if len(filtered) != 1 || filtered[0].ID != "b" {
		t.Errorf("expected only b, got %+v", filtered)
	}
}

func TestApplyFilters_MinScore(t *testing.T) {
	minScore := 0.5
	results := []Result{
		{ID: "a", Metadata: storage.Metadata{Score: 0.9}},
		{ID: "b", Metadata: storage.Metadata{Score: 0.5}},
		{ID: "c", Metadata: storage.Metadata{Score: 0.2}},
	}

	filtered := applyFilters(results, Options{MinScore: &minScore})

	if len(filtered) != 2 {
		t.Fatalf("expected 2 results at or above 0.5, got %d", len(filtered))
	}
	for _, result := range filtered {
		if result.Metadata.Score < minScore {
			t.Errorf("result %s below min score: %f", result.ID, result.Metadata.Score)
		}
	}
}

func TestApplyFilters_DateWindow(t *testing.T) {
	results := []Result{
		{ID: "old", Metadata: storage.Metadata{Date: "10/18/23"}},
		{ID: "mid", Metadata: storage.Metadata{Date: "2024-08-01"}},
		{ID: "new", Metadata: storage.Metadata{Date: "2024-09-15"}},
		{ID: "undated", Metadata: storage.Metadata{}},
	}

	filtered := applyFilters(results, Options{AfterDate: "2024-01-01", BeforeDate: "2024-08-31"})

	if len(filtered) != 1 || filtered[0].ID != "mid" {
		t.Errorf("expected only mid inside the window, got %+v", filtered)
	}
}

func TestApplyFilters_UnparseableDateTreatedAsOld(t *testing.T) {
	results := []Result{
		{ID: "garbled", Metadata: storage.Metadata{Date: "sometime in spring"}},
		{ID: "good", Metadata: storage.Metadata{Date: "2024-08-01"}},
	}

	filtered := applyFilters(results, Options{AfterDate: "2024-01-01"})

	if len(filtered) != 1 || filtered[0].ID != "good" {
		t.Errorf("garbled date should sort before any after-filter, got %+v", filtered)
	}
}

func TestApplyFilters_NoFilters(t *testing.T) {
	results := []Result{{ID: "a"}, {ID: "b"}}

	filtered := applyFilters(results, Options{})

	if len(filtered) != 2 {
		t.Errorf("expected passthrough without filters, got %d", len(filtered))
	}
}

func TestSearch_HybridPrefersSemanticMatch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"parallel programming": {0.95, 0.05, 0, 0}, // near t001, not its keywords
	}}
	index := newTestIndex(t, embedder)

	results, err := index.Search(context.Background(), "parallel programming", Options{TopK: 4})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("expected keyword and semantic hits, got %d results", len(results))
	}

	ids := make(map[string]bool)
	for _, result := range results {
		ids[result.ID] = true
	}
	if !ids["t001"] {
		t.Error("semantic neighbor t001 missing from hybrid results")
	}
	if !ids["t002"] {
		t.Error("keyword match t002 missing from hybrid results")
	}
}

func TestSearch_EmbedderFailureFallsBackToKeyword(t *testing.T) {
	embedder := &fakeEmbedder{err: context.DeadlineExceeded}
	index := newTestIndex(t, embedder)

	results, err := index.Search(context.Background(), "goroutine", Options{})
	if err != nil {
		t.Fatalf("expected keyword fallback, got error: %v", err)
	}
	if len(results) == 0 || results[0].ID != "t001" {
		t.Errorf("expected keyword hit t001, got %+v", results)
	}
}

func TestSearch_TopKTruncates(t *testing.T) {
	index := newTestIndex(t, nil)

	results, err := index.Search(context.Background(), "", Options{TopK: 2})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestSearch_CombinedFilters(t *testing.T) {
	index := newTestIndex(t, nil)
	minScore := 0.5

	results, err := index.Search(context.Background(), "", Options{
		Category:  trend.CategoryEmergingTopics,
		MinScore:  &minScore,
		AfterDate: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 1 || results[0].ID != "t001" {
		t.Errorf("expected only t001 to pass all filters, got %+v", results)
	}
}
