package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trendscope/trendscope/internal/trend"
	"github.com/trendscope/trendscope/internal/youtube"
)

const (
	defaultVideosPerQuery = 5
	defaultMaxVideos      = 25
	videoConcurrency      = 8

	runIDTimestampFormat = "20060102_150405"
)

// VideoSearcher finds videos for a search query.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, limit int, publishedAfter string) ([]youtube.Video, error)
}

// TranscriptFetcher retrieves a video transcript.
type TranscriptFetcher interface {
	GetTranscript(ctx context.Context, videoURL string, languages ...string) (string, error)
}

// RecordEmbedder produces embedding vectors for record texts.
type RecordEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// RecordStore persists trend records.
type RecordStore interface {
	UpsertTrends(ctx context.Context, records []trend.Record) error
}

// Runner orchestrates a full analysis: generate search queries from the
// user's question, find videos, pull transcripts, extract insights, and
// store the embedded records.
type Runner struct {
	queries     *QueryGenerator
	videos      VideoSearcher
	transcripts TranscriptFetcher
	extractor   *Extractor
	embedder    RecordEmbedder
	store       RecordStore

	videosPerQuery int
	maxVideos      int
	concurrency    int
	now            func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithVideosPerQuery sets how many videos each generated query fetches.
func WithVideosPerQuery(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.videosPerQuery = n
		}
	}
}

// WithMaxVideos caps the number of videos processed in one run.
func WithMaxVideos(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxVideos = n
		}
	}
}

// NewRunner wires the pipeline stages into a Runner.
func NewRunner(queries *QueryGenerator, videos VideoSearcher, transcripts TranscriptFetcher,
	extractor *Extractor, embedder RecordEmbedder, store RecordStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		queries:        queries,
		videos:         videos,
		transcripts:    transcripts,
		extractor:      extractor,
		embedder:       embedder,
		store:          store,
		videosPerQuery: defaultVideosPerQuery,
		maxVideos:      defaultMaxVideos,
		concurrency:    videoConcurrency,
		now:            time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunReport summarizes one analysis run.
type RunReport struct {
	RunID              string   `json:"run_id"`
	Queries            []string `json:"queries"`
	QueryReasoning     string   `json:"query_reasoning,omitempty"`
	VideosFound        int      `json:"videos_found"`
	VideosProcessed    int      `json:"videos_processed"`
	TranscriptFailures int      `json:"transcript_failures"`
	TrendsStored       int      `json:"trends_stored"`
}

// Run executes the full analysis for a user question and stores the
// extracted trends under a fresh run id.
func (r *Runner) Run(ctx context.Context, userQuery string, numQueries int) (*RunReport, error) {
	queryResult, err := r.queries.Generate(ctx, userQuery, numQueries)
	if err != nil {
		return nil, fmt.Errorf("pipeline: query generation failed: %w", err)
	}

	videos, err := r.findVideos(ctx, queryResult)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("pipeline: no videos found for any generated query")
	}

	runID := "run_" + r.now().Format(runIDTimestampFormat)
	report := &RunReport{
		RunID:          runID,
		Queries:        queryResult.Queries,
		QueryReasoning: queryResult.Reasoning,
		VideosFound:    len(videos),
	}

	records, err := r.processVideos(ctx, videos, runID, report)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return report, fmt.Errorf("pipeline: no insights extracted from %d videos", len(videos))
	}

	if err := r.embedRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("pipeline: embedding failed: %w", err)
	}
	if err := r.store.UpsertTrends(ctx, records); err != nil {
		return nil, fmt.Errorf("pipeline: storing run %s failed: %w", runID, err)
	}

	report.TrendsStored = len(records)
	log.Printf("Run %s complete: %d trends from %d videos", runID, len(records), report.VideosProcessed)
	return report, nil
}

// findVideos fans the generated queries out to video search, deduplicating
// by video URL and capping the total.
func (r *Runner) findVideos(ctx context.Context, queryResult *QueryResult) ([]youtube.Video, error) {
	seen := make(map[string]bool)
	var videos []youtube.Video

	for _, query := range queryResult.Queries {
		found, err := r.videos.SearchVideos(ctx, query, r.videosPerQuery, queryResult.Date)
		if err != nil {
			log.Printf("Warning: video search failed for %q: %v", query, err)
			continue
		}
		for _, video := range found {
			if seen[video.URL] {
				continue
			}
			seen[video.URL] = true
			videos = append(videos, video)
			if len(videos) >= r.maxVideos {
				return videos, nil
			}
		}
	}
	return videos, nil
}

// processVideos pulls transcripts and extracts insights concurrently.
// Per-video failures are counted, not fatal.
func (r *Runner) processVideos(ctx context.Context, videos []youtube.Video, runID string, report *RunReport) ([]trend.Record, error) {
	var (
		mu      sync.Mutex
		records []trend.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range videos {
		video := videos[i]
		g.Go(func() error {
			transcript, err := r.transcripts.GetTranscript(gctx, video.URL)
			if err != nil {
				log.Printf("Warning: no transcript for %s (%s): %v", video.VideoID, video.Title, err)
				mu.Lock()
				report.TranscriptFailures++
				mu.Unlock()
				return nil
			}

			insights, err := r.extractor.ProcessTranscript(gctx, transcript, publishDate(video))
			if err != nil {
				log.Printf("Warning: extraction failed for %s: %v", video.VideoID, err)
				return nil
			}

			mu.Lock()
			records = append(records, insights.Records(runID)...)
			report.VideosProcessed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) embedRecords(ctx context.Context, records []trend.Record) error {
	if r.embedder == nil {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d records", len(vectors), len(records))
	}
	for i := range records {
		records[i].Embedding = vectors[i]
	}
	return nil
}

// publishDate reduces an RFC 3339 publish timestamp to the YYYY-MM-DD
// date attached to insights.
func publishDate(video youtube.Video) string {
	if len(video.PublishedAt) >= 10 {
		return video.PublishedAt[:10]
	}
	return ""
}

var _ VideoSearcher = (*youtube.SearchClient)(nil)
var _ TranscriptFetcher = (*youtube.TranscriptClient)(nil)
