package config

import "fmt"

// Validate checks the configuration for values that would break the
// pipeline at runtime.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model cannot be empty")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Extraction.Model == "" {
		return fmt.Errorf("extraction.model cannot be empty")
	}
	if c.Extraction.MaxTokens <= 0 {
		return fmt.Errorf("extraction.maxTokens must be positive, got %d", c.Extraction.MaxTokens)
	}
	if c.Extraction.ChunkSize <= 0 {
		return fmt.Errorf("extraction.chunkSize must be positive, got %d", c.Extraction.ChunkSize)
	}
	if c.Extraction.ChunkOverlap < 0 {
		return fmt.Errorf("extraction.chunkOverlap cannot be negative, got %d", c.Extraction.ChunkOverlap)
	}
	if c.Extraction.ChunkOverlap >= c.Extraction.ChunkSize {
		return fmt.Errorf("extraction.chunkOverlap (%d) must be smaller than chunkSize (%d)",
			c.Extraction.ChunkOverlap, c.Extraction.ChunkSize)
	}
	if c.YouTube.SearchLimit <= 0 {
		return fmt.Errorf("youtube.searchLimit must be positive, got %d", c.YouTube.SearchLimit)
	}
	if c.YouTube.VideosPerQuery <= 0 {
		return fmt.Errorf("youtube.videosPerQuery must be positive, got %d", c.YouTube.VideosPerQuery)
	}
	if c.YouTube.MaxVideos <= 0 {
		return fmt.Errorf("youtube.maxVideos must be positive, got %d", c.YouTube.MaxVideos)
	}
	if c.Ingest.ResultsDir == "" {
		return fmt.Errorf("ingest.resultsDir cannot be empty")
	}
	if c.Ingest.MinScore < -1.0 || c.Ingest.MinScore > 1.0 {
		return fmt.Errorf("ingest.minScore must be in [-1, 1], got %.2f", c.Ingest.MinScore)
	}
	if c.Cluster.SweepTimeoutSeconds < 0 {
		return fmt.Errorf("cluster.sweepTimeoutSeconds cannot be negative, got %d", c.Cluster.SweepTimeoutSeconds)
	}
	return nil
}
