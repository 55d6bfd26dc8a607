/*
Package storage provides data models for the trend store.

Corpus is the parallel-array dump consumed by the clustering engine;
Metadata carries the per-record fields that live alongside the document
text and embedding vector.
*/
package storage

import "github.com/trendscope/trendscope/internal/trend"

// Metadata is the structured part of a stored trend record.
type Metadata struct {
	// Category is the insight category.
	Category trend.Category `json:"category"`

	// Score is the signed trend strength in [-1, 1].
	Score float64 `json:"score"`

	// Date is the raw source transcript date.
	Date string `json:"date"`

	// RunID identifies the analysis run that produced the record.
	RunID string `json:"run_id"`
}

// Corpus is every embedded record in the store as position-aligned parallel
// arrays: index i of each slice describes the same record. An empty store
// yields empty slices, not an error; raising the empty-corpus condition is
// the caller's responsibility.
type Corpus struct {
	IDs        []string    `json:"ids"`
	Documents  []string    `json:"documents"`
	Metadatas  []Metadata  `json:"metadatas"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Stats summarizes the store contents.
type Stats struct {
	// TotalTrends is the number of stored records.
	TotalTrends int `json:"total_trends"`

	// Categories maps category to record count.
	Categories map[trend.Category]int `json:"categories"`

	// Runs maps run id to record count.
	Runs map[string]int `json:"runs"`

	// ScoreDistribution buckets records by score band.
	ScoreDistribution ScoreDistribution `json:"score_distribution"`
}

// ScoreDistribution buckets trend scores the way the reporting tools
// present them.
type ScoreDistribution struct {
	High    int     `json:"high"`    // score > 0.7
	Medium  int     `json:"medium"`  // 0.3 <= score <= 0.7
	Low     int     `json:"low"`     // score < 0.3
	Average float64 `json:"average"`
}
