package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/trendscope/trendscope/internal/trend"
)

// Store defines the persistent trend store operations.
type Store interface {
	// Init opens the database and runs migrations.
	Init() error

	// UpsertTrends inserts or replaces trend records.
	UpsertTrends(ctx context.Context, records []trend.Record) error

	// GetAll returns every embedded record as parallel arrays.
	GetAll(ctx context.Context) (Corpus, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Dimension returns the embedding dimensionality of the corpus, or 0
	// when the store holds no embedded records.
	Dimension(ctx context.Context) (int, error)

	// Stats summarizes the store contents.
	Stats(ctx context.Context) (Stats, error)

	// DeleteRun removes all records belonging to an analysis run.
	DeleteRun(ctx context.Context, runID string) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStore implements Store on SQLite via modernc.org/sqlite (pure Go,
// CGo-free).
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStore creates a store backed by the database at dbPath. Parent
// directories are created on Init.
func NewStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Init opens the database and runs migrations. Safe to call more than
// once; only the first call does work.
func (s *SQLiteStore) Init() error {
	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		s.db = db
		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
	})
	return initErr
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// vectorToJSON serializes an embedding vector for storage.
func vectorToJSON(vector []float32) string {
	data, err := json.Marshal(vector)
	if err != nil {
		log.Printf("Warning: failed to marshal vector: %v", err)
		return "[]"
	}
	return string(data)
}

// jsonToVector parses a stored embedding vector.
func jsonToVector(jsonStr string) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal([]byte(jsonStr), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}
