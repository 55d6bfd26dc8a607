/*
Package cli implements the trendscope command line interface.

Each command is constructed by a NewXxxCmd function and wired onto the
root command by cmd/trendscope. Commands resolve configuration from
~/.trendscope.yaml (overridable with --config) and API keys from the
environment.
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/config"
	"github.com/trendscope/trendscope/internal/embed"
	"github.com/trendscope/trendscope/internal/search"
	"github.com/trendscope/trendscope/internal/storage"
)

var configFile string

// RegisterGlobalFlags attaches the flags shared by every command.
func RegisterGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.trendscope.yaml)")
}

func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	store := storage.NewStore(cfg.Database.Path)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to open trend store at %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

// newEmbedder builds the OpenAI embedder, or returns nil when no key is
// configured so callers can degrade to keyword-only behavior.
func newEmbedder(cfg *config.Config) *embed.OpenAI {
	if cfg.Keys.OpenAI == "" {
		return nil
	}
	return embed.NewOpenAI(cfg.Keys.OpenAI,
		embed.WithModel(cfg.Embedding.Model),
		embed.WithDimension(cfg.Embedding.Dimensions),
	)
}

// buildSearchIndex loads the full corpus and indexes it for hybrid
// search. The returned index must be closed by the caller.
func buildSearchIndex(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore) (*search.Index, error) {
	var embedder search.Embedder
	if e := newEmbedder(cfg); e != nil {
		embedder = e
	} else {
		fmt.Fprintln(os.Stderr, "Note: OPENAI_API_KEY not set, semantic search disabled")
	}

	index, err := search.NewIndex(embedder)
	if err != nil {
		return nil, err
	}

	corpus, err := store.GetAll(ctx)
	if err != nil {
		index.Close()
		return nil, err
	}
	if err := index.Rebuild(corpus); err != nil {
		index.Close()
		return nil, err
	}
	return index, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
