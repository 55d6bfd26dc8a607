package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/trendscope/trendscope/internal/trend"
)

const (
	defaultClaudeModel     = anthropic.Model("claude-3-5-sonnet-20241022")
	defaultClaudeMaxTokens = 1000

	// Chunk-by-category API calls issued concurrently.
	extractConcurrency = 4
)

// categoryPrompts describe what to extract per insight category.
var categoryPrompts = map[trend.Category]string{
	trend.CategoryEarlyAdopterProducts: "Extract specific product names, tools, platforms, hardware, services, apps, and technologies mentioned or discussed. Focus on concrete products and technologies.",
	trend.CategoryEmergingTopics:       "Extract trending topics, innovation areas, and emerging themes that are gaining traction. Focus on concepts and trends rather than specific products.",
	trend.CategoryProblemSpaces:        "Extract problems, pain points, limitations, and challenges being discussed. Focus on issues that need solutions or are causing difficulties.",
	trend.CategoryBehavioralPatterns:   "Extract behavioral changes, usage patterns, workflow modifications, and adoption/abandonment behaviors being described.",
	trend.CategoryEducationalDemand:    "Extract learning needs, skill gaps, training demands, certification requirements, and educational opportunities being discussed.",
}

// messagesAPI is the slice of the Anthropic client the extractor needs.
type messagesAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Extractor pulls scored trend insights out of transcripts via Claude.
type Extractor struct {
	msgs      messagesAPI
	model     anthropic.Model
	maxTokens int64
	chunker   *Chunker
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithModel overrides the Claude model.
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) { e.model = anthropic.Model(model) }
}

// WithMaxTokens overrides the per-call output token budget.
func WithMaxTokens(maxTokens int64) ExtractorOption {
	return func(e *Extractor) { e.maxTokens = maxTokens }
}

// WithChunker overrides the transcript chunker.
func WithChunker(chunker *Chunker) ExtractorOption {
	return func(e *Extractor) { e.chunker = chunker }
}

// NewExtractor creates an extractor talking to the Anthropic API.
func NewExtractor(apiKey string, opts ...ExtractorOption) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pipeline: anthropic api key required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	e := &Extractor{
		msgs:      &client.Messages,
		model:     defaultClaudeModel,
		maxTokens: defaultClaudeMaxTokens,
		chunker:   NewChunker(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// ProcessTranscript chunks a transcript and extracts insights for every
// category, then aggregates them sorted by trend significance. A failed
// extraction for one chunk-category cell logs a warning and contributes
// nothing; the rest of the transcript still processes.
func (e *Extractor) ProcessTranscript(ctx context.Context, transcript, transcriptDate string) (*TranscriptInsights, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("pipeline: transcript cannot be empty")
	}
	if transcriptDate == "" {
		transcriptDate = time.Now().Format("2006-01-02")
	}

	chunks := e.chunker.Chunk(transcript)
	log.Printf("Processing transcript from %s: %d chars, %d chunks", transcriptDate, len(transcript), len(chunks))

	type cell struct {
		category trend.Category
		insights []rawInsight
	}

	// One slot per chunk-category pair keeps aggregation deterministic
	// regardless of completion order.
	cells := make([]cell, len(chunks)*len(trend.Categories))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)
	for i, chunk := range chunks {
		for j, category := range trend.Categories {
			slot := i*len(trend.Categories) + j
			chunk, category := chunk, category
			g.Go(func() error {
				insights, err := e.extractCategory(gctx, chunk, category)
				if err != nil {
					log.Printf("Warning: failed to extract %s from chunk: %v", category, err)
					insights = nil
				}
				mu.Lock()
				cells[slot] = cell{category: category, insights: insights}
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait() // cell failures degrade to empty results

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byCategory := make(map[trend.Category][]Insight, len(trend.Categories))
	for _, c := range cells {
		for _, raw := range c.insights {
			byCategory[c.category] = append(byCategory[c.category], Insight{
				Text:  raw.text,
				Date:  transcriptDate,
				Score: raw.score,
			})
		}
	}
	for category := range byCategory {
		sortBySignificance(byCategory[category])
	}

	result := &TranscriptInsights{
		ByCategory:     byCategory,
		TranscriptDate: transcriptDate,
		Metadata: ProcessingMetadata{
			ChunksProcessed:  len(chunks),
			TranscriptLength: len(transcript),
			ProcessedAt:      time.Now(),
		},
	}
	result.Metadata.TotalInsights = result.Total()

	log.Printf("Processing complete: %d insights extracted", result.Metadata.TotalInsights)
	return result, nil
}

type rawInsight struct {
	text  string
	score float64
}

// extractCategory runs one Claude call for one chunk and category.
func (e *Extractor) extractCategory(ctx context.Context, chunk string, category trend.Category) ([]rawInsight, error) {
	prompt := buildCategoryPrompt(chunk, category)

	msg, err := e.msgs.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}

	return parseInsights(text.String()), nil
}

func buildCategoryPrompt(chunk string, category trend.Category) string {
	return fmt.Sprintf(`Analyze this transcript excerpt and extract insights related to: %s

Transcript excerpt:
%s

Extract insights and score each from -1.0 to +1.0 where:
- +1.0 = highly trending/rising/growing/urgent
- 0.0 = neutral/stable/unclear
- -1.0 = declining/losing momentum/solved/obsolete

Return ONLY a JSON array in this exact format:
[
    ["insight description", score],
    ["another insight", score]
]

Focus on specific, actionable insights. If no relevant insights are found, return an empty array: []`,
		categoryPrompts[category], chunk)
}

// parseInsights pulls the JSON array out of a model response. Malformed
// responses yield no insights rather than an error.
func parseInsights(response string) []rawInsight {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil
	}

	var entries [][]json.RawMessage
	if err := json.Unmarshal([]byte(response[start:end+1]), &entries); err != nil {
		log.Printf("Warning: failed to parse insights response: %v", err)
		return nil
	}

	var insights []rawInsight
	for _, entry := range entries {
		if len(entry) < 2 {
			continue
		}
		var text string
		var score float64
		if err := json.Unmarshal(entry[0], &text); err != nil {
			continue
		}
		if err := json.Unmarshal(entry[1], &score); err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		insights = append(insights, rawInsight{text: text, score: clampScore(score)})
	}
	return insights
}

// clampScore forces a score into the valid [-1, 1] range.
func clampScore(score float64) float64 {
	if score < -1.0 {
		return -1.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// sortBySignificance orders insights by absolute score descending, so
// the strongest signals in either direction surface first.
func sortBySignificance(insights []Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return math.Abs(insights[i].Score) > math.Abs(insights[j].Score)
	})
}
