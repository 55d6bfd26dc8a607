/*
Package search implements retrieval over the trend corpus.

Keyword search runs against a BM25 index (Bleve); semantic search runs
approximate nearest-neighbour lookups over an HNSW graph built from the
stored embeddings. Hybrid queries fuse both rankings with weighted
min-max normalization, then narrow the result set post-search by
category, trend score and date window.
*/
package search

import (
	"github.com/trendscope/trendscope/internal/storage"
	"github.com/trendscope/trendscope/internal/trend"
)

// Result is a single retrieved trend with its relevance score.
type Result struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Metadata   storage.Metadata `json:"metadata"`
	Similarity float64          `json:"similarity,omitempty"`
	Score      float64          `json:"score"`
}

// Options narrows a search. The zero value means no filtering and the
// default result count.
type Options struct {
	TopK       int
	Category   trend.Category
	MinScore   *float64
	AfterDate  string
	BeforeDate string
}

const defaultTopK = 10

func (o Options) topK() int {
	if o.TopK <= 0 {
		return defaultTopK
	}
	return o.TopK
}

func (o Options) filtered() bool {
	return o.Category != "" || o.MinScore != nil || o.AfterDate != "" || o.BeforeDate != ""
}
