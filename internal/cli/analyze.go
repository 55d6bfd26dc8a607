package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/pipeline"
	"github.com/trendscope/trendscope/internal/youtube"
)

// NewAnalyzeCmd creates the 'analyze' command running the full pipeline.
func NewAnalyzeCmd() *cobra.Command {
	var (
		numQueries     int
		maxVideos      int
		videosPerQuery int
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <question>",
		Short: "Run a full trend analysis from a question",
		Long: `Turn a question into YouTube search queries, pull transcripts
from the top videos, extract trend insights with Claude, and store the
embedded results as a new analysis run.

Requires ANTHROPIC_API_KEY, YOUTUBE_API_KEY, and OPENAI_API_KEY.`,
		Example: `  trendscope analyze "what developer tools are trending"
  trendscope analyze "emerging AI products" --max-videos 10 --queries 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Keys.Anthropic == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY is required for analysis")
			}
			if cfg.Keys.YouTube == "" {
				return fmt.Errorf("YOUTUBE_API_KEY is required for video search")
			}
			if cfg.Keys.OpenAI == "" {
				return fmt.Errorf("OPENAI_API_KEY is required to embed trends")
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			queries, err := pipeline.NewQueryGenerator(cfg.Keys.Anthropic,
				pipeline.WithModel(cfg.Extraction.Model),
				pipeline.WithMaxTokens(int64(cfg.Extraction.MaxTokens)),
			)
			if err != nil {
				return err
			}
			extractor, err := pipeline.NewExtractor(cfg.Keys.Anthropic,
				pipeline.WithModel(cfg.Extraction.Model),
				pipeline.WithMaxTokens(int64(cfg.Extraction.MaxTokens)),
				pipeline.WithChunker(pipeline.NewChunkerWithSizes(cfg.Extraction.ChunkSize, cfg.Extraction.ChunkOverlap)),
			)
			if err != nil {
				return err
			}
			videos, err := youtube.NewSearchClient(cfg.Keys.YouTube)
			if err != nil {
				return err
			}

			perQuery := videosPerQuery
			if perQuery == 0 {
				perQuery = cfg.YouTube.VideosPerQuery
			}
			videoCap := maxVideos
			if videoCap == 0 {
				videoCap = cfg.YouTube.MaxVideos
			}

			runner := pipeline.NewRunner(queries, videos, youtube.NewTranscriptClient(),
				extractor, newEmbedder(cfg), store,
				pipeline.WithVideosPerQuery(perQuery),
				pipeline.WithMaxVideos(videoCap),
			)

			report, err := runner.Run(cmd.Context(), strings.Join(args, " "), numQueries)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(report)
			}

			fmt.Printf("Run %s complete\n", report.RunID)
			fmt.Printf("Queries: %s\n", strings.Join(report.Queries, "; "))
			if report.QueryReasoning != "" {
				fmt.Printf("Reasoning: %s\n", report.QueryReasoning)
			}
			fmt.Printf("Videos: %d found, %d processed, %d without transcripts\n",
				report.VideosFound, report.VideosProcessed, report.TranscriptFailures)
			fmt.Printf("Trends stored: %d\n", report.TrendsStored)
			return nil
		},
	}

	cmd.Flags().IntVar(&numQueries, "queries", 5, "Number of search queries to generate")
	cmd.Flags().IntVar(&maxVideos, "max-videos", 0, "Cap on videos processed (default from config)")
	cmd.Flags().IntVar(&videosPerQuery, "videos-per-query", 0, "Videos fetched per query (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
