package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/trendscope/trendscope/internal/trend"
)

// fakeMessages returns canned responses keyed by category prompt text.
type fakeMessages struct {
	mu        sync.Mutex
	responses map[trend.Category]string
	err       error
	calls     int
}

func (f *fakeMessages) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	prompt := params.Messages[0].Content[0].OfText.Text
	response := "[]"
	for category, canned := range f.responses {
		if strings.Contains(prompt, categoryPrompts[category]) {
			response = canned
			break
		}
	}

	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: response}},
	}, nil
}

func newTestExtractor(msgs messagesAPI) *Extractor {
	return &Extractor{
		msgs:      msgs,
		model:     defaultClaudeModel,
		maxTokens: defaultClaudeMaxTokens,
		chunker:   NewChunker(),
	}
}

func TestProcessTranscript_ExtractsPerCategory(t *testing.T) {
	msgs := &fakeMessages{responses: map[trend.Category]string{
		trend.CategoryEarlyAdopterProducts: `[["new AI-powered keyboard", 0.8]]`,
		trend.CategoryEmergingTopics:       `[["local-first software", 0.6], ["edge computing", 0.3]]`,
	}}
	extractor := newTestExtractor(msgs)

	insights, err := extractor.ProcessTranscript(context.Background(), "People keep talking about tools.", "2024-08-01")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if got := len(insights.ByCategory[trend.CategoryEarlyAdopterProducts]); got != 1 {
		t.Errorf("expected 1 product insight, got %d", got)
	}
	if got := len(insights.ByCategory[trend.CategoryEmergingTopics]); got != 2 {
		t.Errorf("expected 2 topic insights, got %d", got)
	}
	if insights.Total() != 3 {
		t.Errorf("expected 3 total insights, got %d", insights.Total())
	}
	if insights.Metadata.TotalInsights != 3 {
		t.Errorf("metadata total mismatch: %d", insights.Metadata.TotalInsights)
	}
	if insights.Metadata.ChunksProcessed != 1 {
		t.Errorf("expected 1 chunk, got %d", insights.Metadata.ChunksProcessed)
	}

	// One API call per category for a single-chunk transcript.
	if msgs.calls != len(trend.Categories) {
		t.Errorf("expected %d API calls, got %d", len(trend.Categories), msgs.calls)
	}
}

func TestProcessTranscript_AttachesDate(t *testing.T) {
	msgs := &fakeMessages{responses: map[trend.Category]string{
		trend.CategoryProblemSpaces: `[["slow builds", 0.5]]`,
	}}
	extractor := newTestExtractor(msgs)

	insights, err := extractor.ProcessTranscript(context.Background(), "Builds are slow everywhere.", "2024-03-15")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	for _, insight := range insights.ByCategory[trend.CategoryProblemSpaces] {
		if insight.Date != "2024-03-15" {
			t.Errorf("expected transcript date on insight, got %q", insight.Date)
		}
	}
	if insights.TranscriptDate != "2024-03-15" {
		t.Errorf("expected transcript date preserved, got %q", insights.TranscriptDate)
	}
}

func TestProcessTranscript_DefaultsToToday(t *testing.T) {
	msgs := &fakeMessages{}
	extractor := newTestExtractor(msgs)

	insights, err := extractor.ProcessTranscript(context.Background(), "Some transcript text here.", "")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if insights.TranscriptDate == "" {
		t.Error("expected a default transcript date")
	}
}

func TestProcessTranscript_SortsBySignificance(t *testing.T) {
	msgs := &fakeMessages{responses: map[trend.Category]string{
		trend.CategoryEmergingTopics: `[["mild", 0.1], ["fading hard", -0.9], ["strong", 0.7]]`,
	}}
	extractor := newTestExtractor(msgs)

	insights, err := extractor.ProcessTranscript(context.Background(), "Trends come and go quickly.", "2024-08-01")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	topics := insights.ByCategory[trend.CategoryEmergingTopics]
	if len(topics) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(topics))
	}
	// Absolute score descending: the -0.9 decline outranks the 0.7 rise.
	if topics[0].Score != -0.9 || topics[1].Score != 0.7 || topics[2].Score != 0.1 {
		t.Errorf("not sorted by significance: %+v", topics)
	}
}

func TestProcessTranscript_EmptyTranscript(t *testing.T) {
	extractor := newTestExtractor(&fakeMessages{})

	if _, err := extractor.ProcessTranscript(context.Background(), "   ", "2024-08-01"); err == nil {
		t.Error("expected error for empty transcript")
	}
}

func TestProcessTranscript_APIFailureDegradesToEmpty(t *testing.T) {
	msgs := &fakeMessages{err: errors.New("rate limited")}
	extractor := newTestExtractor(msgs)

	insights, err := extractor.ProcessTranscript(context.Background(), "Some transcript text here.", "2024-08-01")
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if insights.Total() != 0 {
		t.Errorf("expected no insights after API failures, got %d", insights.Total())
	}
}

func TestParseInsights_ProseAroundArray(t *testing.T) {
	insights := parseInsights(`Here are the insights I found:
[["rust adoption growing", 0.8], ["jquery usage", -0.6]]
Let me know if you need more.`)

	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	if insights[0].text != "rust adoption growing" || insights[0].score != 0.8 {
		t.Errorf("unexpected first insight: %+v", insights[0])
	}
}

func TestParseInsights_Malformed(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"no array", "I could not find any insights."},
		{"broken json", `[["unterminated", 0.5`},
		{"not an array of pairs", `[{"text": "wrong shape"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseInsights(tc.response); len(got) != 0 {
				t.Errorf("expected no insights, got %+v", got)
			}
		})
	}
}

func TestParseInsights_SkipsBadEntries(t *testing.T) {
	insights := parseInsights(`[["good insight", 0.5], ["missing score"], ["", 0.3], [42, 0.1]]`)

	if len(insights) != 1 {
		t.Fatalf("expected only the valid entry, got %d", len(insights))
	}
	if insights[0].text != "good insight" {
		t.Errorf("wrong entry survived: %+v", insights[0])
	}
}

func TestParseInsights_ClampsScores(t *testing.T) {
	insights := parseInsights(`[["over", 3.5], ["under", -2.0]]`)

	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	if insights[0].score != 1.0 {
		t.Errorf("expected score clamped to 1.0, got %f", insights[0].score)
	}
	if insights[1].score != -1.0 {
		t.Errorf("expected score clamped to -1.0, got %f", insights[1].score)
	}
}

func TestRecords_AssignsIDsAndRun(t *testing.T) {
	insights := &TranscriptInsights{
		ByCategory: map[trend.Category][]Insight{
			trend.CategoryEmergingTopics: {
				{Text: "topic one", Date: "2024-08-01", Score: 0.5},
				{Text: "topic two", Date: "2024-08-01", Score: 0.3},
			},
			trend.CategoryProblemSpaces: {
				{Text: "pain point", Date: "2024-08-01", Score: -0.4},
			},
		},
		TranscriptDate: "2024-08-01",
	}

	records := insights.Records("run-42")

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	seen := make(map[string]bool)
	for _, record := range records {
		if err := record.Validate(); err != nil {
			t.Errorf("record failed validation: %v", err)
		}
		if record.RunID != "run-42" {
			t.Errorf("expected run id run-42, got %q", record.RunID)
		}
		if seen[record.ID] {
			t.Errorf("duplicate record id %s", record.ID)
		}
		seen[record.ID] = true
	}
}

func TestProcessTranscript_MultiChunkCallCount(t *testing.T) {
	msgs := &fakeMessages{}
	extractor := &Extractor{
		msgs:      msgs,
		model:     defaultClaudeModel,
		maxTokens: defaultClaudeMaxTokens,
		chunker:   NewChunkerWithSizes(120, 20),
	}

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "Sentence number %d fills out this transcript nicely. ", i)
	}

	insights, err := extractor.ProcessTranscript(context.Background(), sb.String(), "2024-08-01")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	expected := insights.Metadata.ChunksProcessed * len(trend.Categories)
	if insights.Metadata.ChunksProcessed < 2 {
		t.Fatalf("expected multiple chunks, got %d", insights.Metadata.ChunksProcessed)
	}
	if msgs.calls != expected {
		t.Errorf("expected %d API calls (%d chunks x %d categories), got %d",
			expected, insights.Metadata.ChunksProcessed, len(trend.Categories), msgs.calls)
	}
}
