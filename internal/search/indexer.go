package search

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/coder/hnsw"

	"github.com/trendscope/trendscope/internal/storage"
)

// Embedder turns query text into a vector in the same space as the
// stored trend embeddings. A nil Embedder disables semantic search and
// hybrid queries degrade to BM25 only.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type docEntry struct {
	text string
	meta storage.Metadata
}

// Index holds the BM25 index and the HNSW graph for one corpus snapshot.
type Index struct {
	mu         sync.RWMutex
	bleveIndex bleve.Index
	graph      *hnsw.Graph[string]
	docs       map[string]docEntry
	embedder   Embedder
}

// NewIndex creates an empty in-memory index. Call Rebuild to load a
// corpus snapshot.
func NewIndex(embedder Embedder) (*Index, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Index{
		bleveIndex: bleveIndex,
		graph:      newGraph(),
		docs:       make(map[string]docEntry),
		embedder:   embedder,
	}, nil
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 32
	return g
}

// buildIndexMapping creates the Bleve mapping for trend documents.
func buildIndexMapping() mapping.IndexMapping {
	trendMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	trendMapping.AddFieldMappingsAt("text", textFieldMapping)

	categoryFieldMapping := bleve.NewTextFieldMapping()
	trendMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", trendMapping)

	return indexMapping
}

// Rebuild replaces the index contents with a corpus snapshot. The
// previous BM25 index and HNSW graph are discarded wholesale, which
// keeps deletes and replacements simple.
func (x *Index) Rebuild(corpus storage.Corpus) error {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := bleveIndex.NewBatch()
	graph := newGraph()
	docs := make(map[string]docEntry, len(corpus.IDs))

	for i, id := range corpus.IDs {
		doc := map[string]interface{}{
			"text":     corpus.Documents[i],
			"category": corpus.Metadatas[i].Category,
		}
		if err := batch.Index(id, doc); err != nil {
			log.Printf("Warning: failed to index trend %s: %v", id, err)
			continue
		}

		docs[id] = docEntry{text: corpus.Documents[i], meta: corpus.Metadatas[i]}

		if len(corpus.Embeddings[i]) > 0 {
			graph.Add(hnsw.MakeNode(id, corpus.Embeddings[i]))
		}
	}

	if err := bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index trends: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	old := x.bleveIndex
	x.bleveIndex = bleveIndex
	x.graph = graph
	x.docs = docs

	if old != nil {
		if err := old.Close(); err != nil {
			log.Printf("Warning: failed to close previous index: %v", err)
		}
	}

	return nil
}

// Count returns the number of indexed trends.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.docs)
}

// Close releases the index resources.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.bleveIndex != nil {
		return x.bleveIndex.Close()
	}

	return nil
}
