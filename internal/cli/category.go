package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/trend"
)

// NewCategoryCmd creates the 'category' command for per-category
// analysis.
func NewCategoryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "category <name>",
		Short: "Analyze trends in one insight category",
		Long: `Summarize a single insight category: trend counts, score
statistics, represented runs, and the top trends by score.

Valid categories: early_adopter_products, emerging_topics,
problem_spaces, behavioral_patterns, educational_demand.`,
		Example: `  trendscope category emerging_topics
  trendscope category problem_spaces --json`,
		Args: cobra.ExactArgs(1),
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

			ctx := cmd.Context()
			index, err := buildSearchIndex(ctx, cfg, store)
			if err != nil {
				return err
			}
			defer index.Close()

			analysis, err := index.AnalyzeCategory(ctx, trend.Category(args[0]))
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(analysis)
			}

			fmt.Printf("Category: %s\n", analysis.Category)
			fmt.Printf("Total trends:    %d\n", analysis.TotalTrends)
			fmt.Printf("Runs represented: %d\n", analysis.RunsRepresented)
			fmt.Printf("Scores: avg %.3f, max %.3f, min %.3f, %d above %.1f\n",
				analysis.ScoreStats.Average, analysis.ScoreStats.Max,
				analysis.ScoreStats.Min, analysis.ScoreStats.HighScoreCount, 0.7)
			fmt.Println("\nTop trends:")
			printResults(analysis.TopTrends)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
