/*
Package pipeline turns raw video transcripts into scored trend insights.

Transcripts are chunked at sentence boundaries with overlap, each chunk
is run through Claude once per insight category, and the per-chunk
results are aggregated into a TranscriptInsights. The package also
generates optimized YouTube search queries from a research question.
*/
package pipeline

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/trendscope/trendscope/internal/trend"
)

// Insight is one extracted trend signal with its source date attached.
type Insight struct {
	Text  string  `json:"text"`
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// ProcessingMetadata records how a transcript run went.
type ProcessingMetadata struct {
	ChunksProcessed  int       `json:"chunks_processed"`
	TotalInsights    int       `json:"total_insights"`
	TranscriptLength int       `json:"transcript_length"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// TranscriptInsights holds every insight extracted from one transcript,
// keyed by category.
type TranscriptInsights struct {
	ByCategory     map[trend.Category][]Insight `json:"by_category"`
	TranscriptDate string                       `json:"transcript_date"`
	Metadata       ProcessingMetadata           `json:"metadata"`
}

// Total returns the number of insights across all categories.
func (ti *TranscriptInsights) Total() int {
	var n int
	for _, insights := range ti.ByCategory {
		n += len(insights)
	}
	return n
}

// Records flattens the insights into storable trend records, assigning
// each a fresh ULID and the given run id.
func (ti *TranscriptInsights) Records(runID string) []trend.Record {
	entropy := ulid.Monotonic(rand.Reader, 0)

	var records []trend.Record
	for _, category := range trend.Categories {
		for _, insight := range ti.ByCategory[category] {
			records = append(records, trend.Record{
				ID:       ulid.MustNew(ulid.Now(), entropy).String(),
				Text:     insight.Text,
				Category: category,
				Score:    insight.Score,
				Date:     insight.Date,
				RunID:    runID,
			})
		}
	}
	return records
}
