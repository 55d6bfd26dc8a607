package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// searchBM25 performs BM25 keyword search over the trend text. An empty
// query matches every document, which is how category-wide scans work.
func (x *Index) searchBM25(queryText string, limit int) ([]Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if limit <= 0 {
		limit = defaultTopK
	}

	var searchQuery query.Query
	if queryText == "" {
		searchQuery = bleve.NewMatchAllQuery()
	} else {
		searchQuery = bleve.NewMatchQuery(queryText)
	}

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)

	results, err := x.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hydrated := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		entry, ok := x.docs[hit.ID]
		if !ok {
			continue
		}
		hydrated = append(hydrated, Result{
			ID:       hit.ID,
			Text:     entry.text,
			Metadata: entry.meta,
			Score:    hit.Score,
		})
	}

	return hydrated, nil
}
