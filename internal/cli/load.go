package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/ingest"
)

// NewLoadCmd creates the 'load' command for ingesting analysis runs.
func NewLoadCmd() *cobra.Command {
	var (
		loadAll    bool
		resultsDir string
		minScore   float64
	)

	cmd := &cobra.Command{
		Use:   "load [run-id]",
		Short: "Load trend analysis runs into the store",
		Long: `Load trend_results.csv files from analysis run directories,
embed the trends, and store them for search and region discovery.`,
		Example: `  trendscope load run_20240801_120000
  trendscope load --all
  trendscope load --all --results-dir ./results --min-score 0.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !loadAll && len(args) == 0 {
				return fmt.Errorf("provide a run id or --all")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Keys.OpenAI == "" {
				return fmt.Errorf("OPENAI_API_KEY is required to embed trends")
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if resultsDir == "" {
				resultsDir = cfg.Ingest.ResultsDir
			}
			threshold := cfg.Ingest.MinScore
			if cmd.Flags().Changed("min-score") {
				threshold = minScore
			}

			loader := ingest.NewLoader(store, newEmbedder(cfg), ingest.WithMinScore(threshold))

			ctx := cmd.Context()
			if loadAll {
				result, err := loader.LoadAllRuns(ctx, resultsDir)
				if err != nil {
					return err
				}
				fmt.Printf("Loaded %d trends from %d/%d runs\n",
					result.TotalTrendsAdded, result.SuccessfulRuns, result.TotalRunsFound)
				for _, failed := range result.FailedRuns {
					fmt.Printf("  failed: %s\n", failed)
				}
				return nil
			}

			result, err := loader.LoadRun(ctx, resultsDir, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d trends from run %s\n", result.TrendsAdded, result.RunID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&loadAll, "all", false, "Load every run under the results directory")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Results directory (default from config)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Drop trends scoring below this at ingest")

	return cmd
}
