package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/trend"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show trend store statistics",
		Long:  `Display totals, per-category and per-run counts, and the score distribution of the trend store.`,
		Example: `  trendscope stats
  trendscope stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(stats)
			}

			fmt.Printf("Total trends: %d\n\n", stats.TotalTrends)

			fmt.Println("By category:")
			for _, category := range trend.Categories {
				if count := stats.Categories[category]; count > 0 {
					fmt.Printf("  %-24s %d\n", category, count)
				}
			}

			fmt.Printf("\nRuns: %d\n", len(stats.Runs))
			for runID, count := range stats.Runs {
				fmt.Printf("  %-24s %d\n", runID, count)
			}

			dist := stats.ScoreDistribution
			fmt.Printf("\nScores: avg %.3f (high %d, medium %d, low %d)\n",
				dist.Average, dist.High, dist.Medium, dist.Low)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
