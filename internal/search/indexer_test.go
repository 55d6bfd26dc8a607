package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/trendscope/trendscope/internal/storage"
	"github.com/trendscope/trendscope/internal/trend"
)

// fakeEmbedder returns canned vectors keyed by text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

// testCorpus builds a small corpus with unit-vector embeddings laid out
// so each record is nearest to its own axis.
func testCorpus() storage.Corpus {
	docs := []struct {
		id       string
		text     string
		category trend.Category
		score    float64
		date     string
		vec      []float32
	}{
		{"t001", "goroutine concurrency patterns gaining adoption", trend.CategoryEmergingTopics, 0.9, "2024-08-01", []float32{1, 0, 0, 0}},
		{"t002", "parallel programming courses in demand", trend.CategoryEducationalDemand, 0.6, "2024-08-05", []float32{0, 1, 0, 0}},
		{"t003", "developers frustrated with slow build pipelines", trend.CategoryProblemSpaces, 0.4, "2023-10-18", []float32{0, 0, 1, 0}},
		{"t004", "new mechanical keyboard for programmers", trend.CategoryEarlyAdopterProducts, 0.8, "2024-07-20", []float32{0, 0, 0, 1}},
	}

	var corpus storage.Corpus
	for _, d := range docs {
		corpus.IDs = append(corpus.IDs, d.id)
		corpus.Documents = append(corpus.Documents, d.text)
		corpus.Metadatas = append(corpus.Metadatas, storage.Metadata{
			Category: d.category,
			Score:    d.score,
			Date:     d.date,
			RunID:    "run-001",
		})
		corpus.Embeddings = append(corpus.Embeddings, d.vec)
	}
	return corpus
}

func newTestIndex(t *testing.T, embedder Embedder) *Index {
	t.Helper()

	index, err := NewIndex(embedder)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	t.Cleanup(func() { index.Close() })

	if err := index.Rebuild(testCorpus()); err != nil {
		t.Fatalf("failed to rebuild index: %v", err)
	}
	return index
}

func TestNewIndex_Empty(t *testing.T) {
	index, err := NewIndex(nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer index.Close()

	if index.Count() != 0 {
		t.Errorf("expected empty index, got %d docs", index.Count())
	}

	results, err := index.Search(context.Background(), "anything", Options{})
	if err != nil {
		t.Fatalf("search on empty index failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(results))
	}
}

func TestRebuild_Count(t *testing.T) {
	index := newTestIndex(t, nil)

	if index.Count() != 4 {
		t.Errorf("expected 4 indexed trends, got %d", index.Count())
	}
}

func TestRebuild_ReplacesContents(t *testing.T) {
	index := newTestIndex(t, nil)

	smaller := storage.Corpus{
		IDs:        []string{"t100"},
		Documents:  []string{"solo trend"},
		Metadatas:  []storage.Metadata{{Category: trend.CategoryEmergingTopics, Score: 0.5, Date: "2024-08-01", RunID: "run-002"}},
		Embeddings: [][]float32{{1, 0, 0, 0}},
	}
	if err := index.Rebuild(smaller); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if index.Count() != 1 {
		t.Errorf("expected 1 trend after rebuild, got %d", index.Count())
	}

	results, err := index.Search(context.Background(), "goroutine", Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, result := range results {
		if result.ID != "t100" {
			t.Errorf("stale document %s survived rebuild", result.ID)
		}
	}
}

func TestRebuild_SkipsMissingEmbeddings(t *testing.T) {
	corpus := testCorpus()
	corpus.Embeddings[2] = nil

	index, err := NewIndex(nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer index.Close()

	if err := index.Rebuild(corpus); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	// The record stays searchable by keyword even without a vector.
	results, err := index.Search(context.Background(), "pipelines", Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	found := false
	for _, result := range results {
		if result.ID == "t003" {
			found = true
		}
	}
	if !found {
		t.Error("expected keyword hit for record without embedding")
	}
}

func TestSearchBM25_KeywordMatch(t *testing.T) {
	index := newTestIndex(t, nil)

	results, err := index.searchBM25("goroutine", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) == 0 {
		t.Fatal("expected at least one result for 'goroutine'")
	}
	if results[0].ID != "t001" {
		t.Errorf("expected first result t001, got %s", results[0].ID)
	}
	if results[0].Text == "" {
		t.Error("result text not hydrated")
	}
	if results[0].Metadata.Category != trend.CategoryEmergingTopics {
		t.Errorf("result metadata not hydrated: %+v", results[0].Metadata)
	}
}

func TestSearchBM25_NoResults(t *testing.T) {
	index := newTestIndex(t, nil)

	results, err := index.searchBM25("zzzznonexistent", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestSearchBM25_EmptyQueryMatchesAll(t *testing.T) {
	index := newTestIndex(t, nil)

	results, err := index.searchBM25("", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("expected all 4 trends for empty query, got %d", len(results))
	}
}

func TestSearchSemantic_NearestAxis(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"concurrency": {0.95, 0.05, 0, 0},
	}}
	index := newTestIndex(t, embedder)

	results, err := index.searchSemantic(context.Background(), "concurrency", 2)
	if err != nil {
		t.Fatalf("semantic search failed: %v", err)
	}

	if len(results) == 0 {
		t.Fatal("expected semantic results")
	}
	if results[0].ID != "t001" {
		t.Errorf("expected nearest neighbor t001, got %s", results[0].ID)
	}
	if results[0].Similarity <= 0.9 {
		t.Errorf("expected high similarity for near-identical vector, got %f", results[0].Similarity)
	}
}

func TestSearchSemantic_NoEmbedder(t *testing.T) {
	index := newTestIndex(t, nil)

	results, err := index.searchSemantic(context.Background(), "concurrency", 5)
	if err != nil {
		t.Fatalf("expected graceful nil, got error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results without an embedder, got %d", len(results))
	}
}

func TestIndex_RebuildLargeCorpus(t *testing.T) {
	var corpus storage.Corpus
	for i := 0; i < 100; i++ {
		corpus.IDs = append(corpus.IDs, fmt.Sprintf("t%03d", i))
		corpus.Documents = append(corpus.Documents, fmt.Sprintf("trend number %d about topic %d", i, i%7))
		corpus.Metadatas = append(corpus.Metadatas, storage.Metadata{
			Category: trend.Categories[i%len(trend.Categories)],
			Score:    float64(i) / 100,
			Date:     "2024-08-01",
			RunID:    "run-003",
		})
		vec := make([]float32, 8)
		vec[i%8] = 1
		corpus.Embeddings = append(corpus.Embeddings, vec)
	}

	index, err := NewIndex(nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer index.Close()

	if err := index.Rebuild(corpus); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if index.Count() != 100 {
		t.Errorf("expected 100 trends, got %d", index.Count())
	}
}
