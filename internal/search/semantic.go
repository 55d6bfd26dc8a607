package search

import (
	"context"
	"fmt"

	"github.com/coder/hnsw"
)

// searchSemantic finds the trends nearest to the query embedding.
// Returns a nil slice without error when no embedder is configured or
// the graph is empty, so callers can degrade to keyword search.
func (x *Index) searchSemantic(ctx context.Context, queryText string, limit int) ([]Result, error) {
	if x.embedder == nil || queryText == "" {
		return nil, nil
	}

	vec, err := x.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph.Len() == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultTopK
	}

	neighbors := x.graph.Search(vec, limit)

	results := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		if len(n.Value) != len(vec) {
			continue
		}
		entry, ok := x.docs[n.Key]
		if !ok {
			continue
		}

		// CosineDistance ranges [0, 2]; fold it into a similarity.
		distance := hnsw.CosineDistance(vec, n.Value)
		similarity := float64(1.0 - distance/2.0)

		results = append(results, Result{
			ID:         n.Key,
			Text:       entry.text,
			Metadata:   entry.meta,
			Similarity: similarity,
			Score:      similarity,
		})
	}

	return results, nil
}
