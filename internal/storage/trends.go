package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trendscope/trendscope/internal/trend"
)

// UpsertTrends inserts or replaces trend records in a single transaction.
// Records without an embedding are stored with a NULL embedding column and
// are invisible to GetAll until re-upserted with a vector.
func (s *SQLiteStore) UpsertTrends(ctx context.Context, records []trend.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trends (id, text, category, score, date, run_id, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}

		var embedding any
		if r.Embedding != nil {
			embedding = vectorToJSON(r.Embedding)
		}

		if _, err := stmt.ExecContext(ctx, r.ID, r.Text, string(r.Category), r.Score, r.Date, r.RunID, embedding); err != nil {
			return fmt.Errorf("failed to upsert trend %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// GetAll returns every embedded record as position-aligned parallel arrays,
// ordered by record id. An empty store yields a Corpus of empty slices.
func (s *SQLiteStore) GetAll(ctx context.Context) (Corpus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, category, score, date, run_id, embedding
		FROM trends
		WHERE embedding IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return Corpus{}, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	corpus := Corpus{
		IDs:        []string{},
		Documents:  []string{},
		Metadatas:  []Metadata{},
		Embeddings: [][]float32{},
	}

	for rows.Next() {
		var (
			id, text, category, date, runID string
			score                           float64
			embeddingJSON                   string
		)
		if err := rows.Scan(&id, &text, &category, &score, &date, &runID, &embeddingJSON); err != nil {
			return Corpus{}, fmt.Errorf("failed to scan trend row: %w", err)
		}

		vector, err := jsonToVector(embeddingJSON)
		if err != nil {
			return Corpus{}, fmt.Errorf("failed to parse embedding for trend %s: %w", id, err)
		}

		corpus.IDs = append(corpus.IDs, id)
		corpus.Documents = append(corpus.Documents, text)
		corpus.Metadatas = append(corpus.Metadatas, Metadata{
			Category: trend.Category(category),
			Score:    score,
			Date:     date,
			RunID:    runID,
		})
		corpus.Embeddings = append(corpus.Embeddings, vector)
	}

	return corpus, rows.Err()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trends").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trends: %w", err)
	}
	return count, nil
}

// Dimension returns the embedding dimensionality of the corpus, derived
// from any one embedded record. Zero means the store has no embedded
// records yet.
func (s *SQLiteStore) Dimension(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embeddingJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT embedding FROM trends
		WHERE embedding IS NOT NULL
		LIMIT 1
	`).Scan(&embeddingJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query embedding dimension: %w", err)
	}

	vector, err := jsonToVector(embeddingJSON)
	if err != nil {
		return 0, err
	}
	return len(vector), nil
}

// DeleteRun removes all records belonging to an analysis run.
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM trends WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

// Clear removes all records.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM trends"); err != nil {
		return fmt.Errorf("failed to clear trends: %w", err)
	}
	return nil
}
