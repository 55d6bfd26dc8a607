/*
Package trend defines the shared domain model for trend insights.

A trend record is a single insight extracted from a YouTube video transcript:
free text, an insight category, a signed trend-strength score, and the date
of the source transcript. Records may carry an embedding vector once they
have been embedded.
*/
package trend

import (
	"fmt"
)

// Category classifies what kind of signal an insight represents.
type Category string

// The fixed set of insight categories produced by the extraction pipeline.
const (
	CategoryEarlyAdopterProducts Category = "early_adopter_products"
	CategoryEmergingTopics       Category = "emerging_topics"
	CategoryProblemSpaces        Category = "problem_spaces"
	CategoryBehavioralPatterns   Category = "behavioral_patterns"
	CategoryEducationalDemand    Category = "educational_demand"
)

// Categories lists all valid categories in a stable order.
var Categories = []Category{
	CategoryEarlyAdopterProducts,
	CategoryEmergingTopics,
	CategoryProblemSpaces,
	CategoryBehavioralPatterns,
	CategoryEducationalDemand,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Record is a single trend insight. Records are immutable after creation.
type Record struct {
	// ID uniquely identifies the record (ULID assigned at ingest).
	ID string `json:"id"`

	// Text is the free-text insight description.
	Text string `json:"text"`

	// Category is the insight category.
	Category Category `json:"category"`

	// Score is the signed trend strength in [-1, 1].
	// Positive means rising, negative means declining.
	Score float64 `json:"score"`

	// Date is the source transcript date. Formats vary; use ParseDate
	// when chronological ordering matters.
	Date string `json:"date"`

	// RunID identifies the analysis run that produced this record.
	RunID string `json:"run_id,omitempty"`

	// Embedding is the record's embedding vector, or nil if the record
	// has not been embedded yet.
	Embedding []float32 `json:"-"`
}

// Validate checks the record's fields against the domain constraints.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("trend: record missing id")
	}
	if r.Text == "" {
		return fmt.Errorf("trend: record %s missing text", r.ID)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("trend: record %s has unknown category %q", r.ID, r.Category)
	}
	if r.Score < -1.0 || r.Score > 1.0 {
		return fmt.Errorf("trend: record %s score %.3f out of range [-1, 1]", r.ID, r.Score)
	}
	return nil
}
