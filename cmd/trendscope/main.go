/*
Package main is the entry point for the trendscope CLI.

trendscope discovers trends in YouTube content: it extracts insight
records from video transcripts, embeds and stores them, and exposes
hybrid search, trending reports, and dense semantic region discovery
over the accumulated corpus.

Usage:
  trendscope [command]

Available Commands:
  analyze     Run a full trend analysis from a question
  load        Load trend analysis runs into the store
  search      Search stored trends
  trending    Show the strongest current trends
  category    Analyze trends in one insight category
  regions     Discover dense semantic regions in the trend space
  stats       Show trend store statistics
  clear       Delete stored trends
  version     Show version information

Examples:
  # Full pipeline: question -> videos -> insights -> store
  trendscope analyze "what developer tools are trending"

  # Load previously exported runs
  trendscope load --all

  # Explore the corpus
  trendscope search "ai coding assistants"
  trendscope regions --algorithm adaptive
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/cli"
	"github.com/trendscope/trendscope/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendscope",
		Short: "Discover and explore trends from YouTube content",
		Long: `trendscope turns YouTube transcripts into a searchable trend corpus.

A question is expanded into search queries with Claude, transcripts of
the top videos are mined for categorized trend insights, and every
insight is embedded and stored. The corpus then supports hybrid
semantic/keyword search, trending reports, per-category analysis, and
density-based discovery of dense semantic regions.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewAnalyzeCmd())
	rootCmd.AddCommand(cli.NewLoadCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewTrendingCmd())
	rootCmd.AddCommand(cli.NewCategoryCmd())
	rootCmd.AddCommand(cli.NewRegionsCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())
	rootCmd.AddCommand(cli.NewClearCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
