/*
Package ingest loads trend analysis runs from disk into the store.

An analysis run is a directory under the results root containing a
trend_results.csv with date, category, information, and score columns.
Loading a run filters low-scoring rows, embeds the surviving documents,
and upserts them as trend records.
*/
package ingest

import (
	"context"
	crand "crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/trendscope/trendscope/internal/storage"
	"github.com/trendscope/trendscope/internal/trend"
)

const (
	resultsFileName = "trend_results.csv"

	// Very negative trends are noise; mildly negative ones still carry
	// signal about decline.
	defaultMinScore = -0.5
)

// ErrNoResultsFile is returned when a run directory has no results CSV.
var ErrNoResultsFile = errors.New("ingest: no trend_results.csv found")

// Embedder produces embedding vectors for batches of documents.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists trend records.
type Store interface {
	UpsertTrends(ctx context.Context, records []trend.Record) error
}

// Loader reads run directories and loads their trends into a store.
type Loader struct {
	store    Store
	embedder Embedder
	minScore float64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMinScore overrides the score threshold below which rows are
// dropped at ingest.
func WithMinScore(minScore float64) LoaderOption {
	return func(l *Loader) { l.minScore = minScore }
}

// NewLoader creates a Loader backed by the given store and embedder.
func NewLoader(store Store, embedder Embedder, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:    store,
		embedder: embedder,
		minScore: defaultMinScore,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RunResult summarizes loading a single run.
type RunResult struct {
	RunID       string `json:"run_id"`
	TrendsAdded int    `json:"trends_added"`
}

// LoadRun loads one run directory into the store.
func (l *Loader) LoadRun(ctx context.Context, resultsDir, runID string) (RunResult, error) {
	path := filepath.Join(resultsDir, runID, resultsFileName)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunResult{}, fmt.Errorf("%w in %s", ErrNoResultsFile, filepath.Join(resultsDir, runID))
		}
		return RunResult{}, fmt.Errorf("ingest: failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := l.parseCSV(f, runID)
	if err != nil {
		return RunResult{}, fmt.Errorf("ingest: failed to load run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return RunResult{}, fmt.Errorf("ingest: no trends above score threshold in run %s", runID)
	}

	if err := l.embed(ctx, records); err != nil {
		return RunResult{}, fmt.Errorf("ingest: failed to embed run %s: %w", runID, err)
	}
	if err := l.store.UpsertTrends(ctx, records); err != nil {
		return RunResult{}, fmt.Errorf("ingest: failed to store run %s: %w", runID, err)
	}

	log.Printf("Loaded %d trends from run %s", len(records), runID)
	return RunResult{RunID: runID, TrendsAdded: len(records)}, nil
}

// AllRunsResult summarizes loading every run under the results root.
type AllRunsResult struct {
	TotalTrendsAdded int      `json:"total_trends_added"`
	SuccessfulRuns   int      `json:"successful_runs"`
	FailedRuns       []string `json:"failed_runs,omitempty"`
	TotalRunsFound   int      `json:"total_runs_found"`
}

// LoadAllRuns loads every run directory under resultsDir that contains
// a results CSV. Individual run failures are logged and reported, not
// fatal.
func (l *Loader) LoadAllRuns(ctx context.Context, resultsDir string) (AllRunsResult, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return AllRunsResult{}, fmt.Errorf("ingest: results directory not found: %s", resultsDir)
	}

	var runIDs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(resultsDir, entry.Name(), resultsFileName)); err == nil {
			runIDs = append(runIDs, entry.Name())
		}
	}
	if len(runIDs) == 0 {
		return AllRunsResult{}, fmt.Errorf("ingest: no run directories with %s found under %s", resultsFileName, resultsDir)
	}

	result := AllRunsResult{TotalRunsFound: len(runIDs)}
	for _, runID := range runIDs {
		runResult, err := l.LoadRun(ctx, resultsDir, runID)
		if err != nil {
			log.Printf("Warning: failed to load run %s: %v", runID, err)
			result.FailedRuns = append(result.FailedRuns, runID)
			continue
		}
		result.TotalTrendsAdded += runResult.TrendsAdded
		result.SuccessfulRuns++
	}

	if result.SuccessfulRuns == 0 {
		return result, fmt.Errorf("ingest: all %d runs failed to load", len(runIDs))
	}
	return result, nil
}

// parseCSV reads a results file into validated records. Rows below the
// score threshold or with unknown categories are skipped.
func (l *Loader) parseCSV(r io.Reader, runID string) ([]trend.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV file")
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"date", "category", "information", "score"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	entropy := ulid.Monotonic(crand.Reader, 0)

	var records []trend.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		score, err := strconv.ParseFloat(row[cols["score"]], 64)
		if err != nil {
			log.Printf("Warning: run %s line %d has unparseable score %q, skipping", runID, line, row[cols["score"]])
			continue
		}
		if score < l.minScore {
			continue
		}

		category := trend.Category(row[cols["category"]])
		if !category.Valid() {
			log.Printf("Warning: run %s line %d has unknown category %q, skipping", runID, line, category)
			continue
		}

		records = append(records, trend.Record{
			ID:       ulid.MustNew(ulid.Now(), entropy).String(),
			Text:     row[cols["information"]],
			Category: category,
			Score:    score,
			Date:     row[cols["date"]],
			RunID:    runID,
		})
	}

	return records, nil
}

func (l *Loader) embed(ctx context.Context, records []trend.Record) error {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	vectors, err := l.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(records))
	}

	for i := range records {
		records[i].Embedding = vectors[i]
	}
	return nil
}

var _ Store = (*storage.SQLiteStore)(nil)
