/*
Package config handles loading, saving, and validating trendscope
configuration.

Configuration is stored in ~/.trendscope.yaml. API keys are never
written to the file; they come from the environment (ANTHROPIC_API_KEY,
OPENAI_API_KEY, YOUTUBE_API_KEY) and are attached at load time.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigFileName = ".trendscope.yaml"

// Config is the root configuration.
type Config struct {
	// Database holds the trend store settings.
	Database DatabaseConfig `yaml:"database"`

	// Embedding holds the embedding provider settings.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Extraction holds the insight extraction settings.
	Extraction ExtractionConfig `yaml:"extraction"`

	// YouTube holds video search and transcript settings.
	YouTube YouTubeConfig `yaml:"youtube"`

	// Ingest holds run loading settings.
	Ingest IngestConfig `yaml:"ingest"`

	// Cluster holds region discovery settings.
	Cluster ClusterConfig `yaml:"cluster"`

	// Keys carries the API keys resolved from the environment. Never
	// serialized.
	Keys APIKeys `yaml:"-"`
}

// DatabaseConfig locates the SQLite trend store.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// EmbeddingConfig selects the embedding model.
type EmbeddingConfig struct {
	// Model is the OpenAI embedding model name.
	Model string `yaml:"model"`

	// Dimensions is the requested embedding dimensionality.
	Dimensions int `yaml:"dimensions"`
}

// ExtractionConfig tunes the transcript insight extraction.
type ExtractionConfig struct {
	// Model is the Claude model used for extraction and query
	// generation.
	Model string `yaml:"model"`

	// MaxTokens bounds each extraction response.
	MaxTokens int `yaml:"maxTokens"`

	// ChunkSize is the max transcript chunk size in characters.
	ChunkSize int `yaml:"chunkSize"`

	// ChunkOverlap is the carried overlap between chunks in characters.
	ChunkOverlap int `yaml:"chunkOverlap"`
}

// YouTubeConfig tunes video search.
type YouTubeConfig struct {
	// SearchLimit is the default number of videos per search.
	SearchLimit int `yaml:"searchLimit"`

	// VideosPerQuery is how many videos each generated query fetches.
	VideosPerQuery int `yaml:"videosPerQuery"`

	// MaxVideos caps the videos processed in one analysis run.
	MaxVideos int `yaml:"maxVideos"`
}

// IngestConfig tunes run loading.
type IngestConfig struct {
	// ResultsDir is the root directory holding analysis run outputs.
	ResultsDir string `yaml:"resultsDir"`

	// MinScore drops rows scoring below it at ingest.
	MinScore float64 `yaml:"minScore"`
}

// ClusterConfig tunes region discovery.
type ClusterConfig struct {
	// SweepTimeoutSeconds bounds the adaptive parameter sweep. Zero
	// disables the bound.
	SweepTimeoutSeconds int `yaml:"sweepTimeoutSeconds"`
}

// APIKeys holds the provider credentials, resolved from the
// environment.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	YouTube   string
}

// Default returns a configuration with working defaults for everything
// but the API keys.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "trends.db",
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Extraction: ExtractionConfig{
			Model:        "claude-3-5-sonnet-20241022",
			MaxTokens:    1000,
			ChunkSize:    4000,
			ChunkOverlap: 200,
		},
		YouTube: YouTubeConfig{
			SearchLimit:    10,
			VideosPerQuery: 5,
			MaxVideos:      25,
		},
		Ingest: IngestConfig{
			ResultsDir: "results",
			MinScore:   -0.5,
		},
		Cluster: ClusterConfig{
			SweepTimeoutSeconds: 120,
		},
	}
}

// DefaultPath returns the path to ~/.trendscope.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, defaultConfigFileName), nil
}
