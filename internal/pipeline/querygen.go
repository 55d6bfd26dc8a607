package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultNumQueries = 5
	queryWordLimit    = 8
)

// QueryResult holds generated YouTube search queries.
type QueryResult struct {
	// Queries are the generated search queries, at most queryWordLimit
	// words each.
	Queries []string `json:"queries"`

	// Date is an optional published-after filter (YYYY-MM-DD), empty
	// when the model decided none applies.
	Date string `json:"date"`

	// Reasoning is the model's explanation of the query strategy.
	Reasoning string `json:"reasoning"`
}

// QueryGenerator produces optimized YouTube search queries for a
// research question.
type QueryGenerator struct {
	msgs      messagesAPI
	model     anthropic.Model
	maxTokens int64
}

// NewQueryGenerator creates a generator talking to the Anthropic API.
func NewQueryGenerator(apiKey string, opts ...ExtractorOption) (*QueryGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pipeline: anthropic api key required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	// Reuse the extractor option set; only model and token budget apply.
	cfg := &Extractor{model: defaultClaudeModel, maxTokens: defaultClaudeMaxTokens}
	for _, o := range opts {
		o(cfg)
	}

	return &QueryGenerator{
		msgs:      &client.Messages,
		model:     cfg.model,
		maxTokens: cfg.maxTokens,
	}, nil
}

// Generate produces numQueries optimized search queries for the user's
// research question.
func (q *QueryGenerator) Generate(ctx context.Context, userQuery string, numQueries int) (*QueryResult, error) {
	if strings.TrimSpace(userQuery) == "" {
		return nil, fmt.Errorf("pipeline: user query cannot be empty")
	}
	if numQueries <= 0 {
		numQueries = defaultNumQueries
	}

	log.Printf("Generating %d search queries for: %q", numQueries, userQuery)

	msg, err := q.msgs.New(ctx, anthropic.MessageNewParams{
		Model:     q.model,
		MaxTokens: q.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildQueryPrompt(userQuery, numQueries))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: query generation failed: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}

	result, err := parseQueryResponse(text.String())
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to parse query response: %w", err)
	}

	log.Printf("Generated %d search queries", len(result.Queries))
	return result, nil
}

func buildQueryPrompt(userQuery string, numQueries int) string {
	return fmt.Sprintf(`You are an expert at crafting optimized YouTube search queries tailored for market research and trendy content discovery. Your goal is to generate %d unique queries.

User Query: %q

Strategy categories (each should produce at least one query):

1. **Expert & Analyst Reviews** - authoritative channels, expert names, "review", "analysis", "opinion"
2. **Educational & Tutorial Content** - how-to, step-by-step, guide, explanation
3. **Trending Influencer Content** - influencers, trending topics, commentary, "viral discussion"

CRITICAL REQUIREMENTS:
- Each query must be %d words or fewer. Keep them simple and general
- Take advantage of youtube's inherent search capabilities and do not complicate the queries
- Return exactly one JSON object, with no extra output

JSON format:
{
  "queries": [
    "query 1",
    "... up to %d items"
  ],
  "date": "YYYY-MM-DD or null",
  "reasoning": "brief explanation of how these queries map to expert, tutorial, influencer or review content"
}`, numQueries, userQuery, queryWordLimit, numQueries)
}

// parseQueryResponse extracts the JSON object from a model response and
// enforces the per-query word limit.
func parseQueryResponse(response string) (*QueryResult, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed struct {
		Queries   []string `json:"queries"`
		Date      string   `json:"date"`
		Reasoning string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, err
	}

	var queries []string
	for _, query := range parsed.Queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if words := strings.Fields(query); len(words) > queryWordLimit {
			query = strings.Join(words[:queryWordLimit], " ")
			log.Printf("Warning: query truncated to %d words: %s", queryWordLimit, query)
		}
		queries = append(queries, query)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no valid queries in response")
	}

	if parsed.Date == "null" {
		parsed.Date = ""
	}

	return &QueryResult{
		Queries:   queries,
		Date:      parsed.Date,
		Reasoning: strings.TrimSpace(parsed.Reasoning),
	}, nil
}
