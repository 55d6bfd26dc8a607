package storage

import (
	"context"
	"fmt"

	"github.com/trendscope/trendscope/internal/trend"
)

// Stats summarizes the store contents: totals, per-category and per-run
// counts, and the score distribution.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Categories: make(map[trend.Category]int),
		Runs:       make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT category, run_id, score FROM trends")
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query trend stats: %w", err)
	}
	defer rows.Close()

	var scoreSum float64
	for rows.Next() {
		var (
			category, runID string
			score           float64
		)
		if err := rows.Scan(&category, &runID, &score); err != nil {
			return Stats{}, fmt.Errorf("failed to scan stats row: %w", err)
		}

		stats.TotalTrends++
		stats.Categories[trend.Category(category)]++
		stats.Runs[runID]++
		scoreSum += score

		switch {
		case score > 0.7:
			stats.ScoreDistribution.High++
		case score >= 0.3:
			stats.ScoreDistribution.Medium++
		default:
			stats.ScoreDistribution.Low++
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	if stats.TotalTrends > 0 {
		stats.ScoreDistribution.Average = scoreSum / float64(stats.TotalTrends)
	}

	return stats, nil
}
