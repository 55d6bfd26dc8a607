package cli

import (
	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/search"
	"github.com/trendscope/trendscope/internal/trend"
)

// NewTrendingCmd creates the 'trending' command.
func NewTrendingCmd() *cobra.Command {
	var (
		topK       int
		category   string
		minScore   float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the strongest current trends",
		Long: `List stored trends ranked by trend score, optionally narrowed
to a single insight category.`,
		Example: `  trendscope trending
  trendscope trending --top-k 5 --category early_adopter_products
  trendscope trending --min-score 0.7 --json`,
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

			opts := search.TrendingOptions{
				TopK:     topK,
				Category: trend.Category(category),
			}
			if cmd.Flags().Changed("min-score") {
				opts.MinScore = &minScore
			}

			results, err := index.Trending(ctx, opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(results)
			}
			printResults(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 20, "Number of trends")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by insight category")
	cmd.Flags().Float64Var(&minScore, "min-score", 0.5, "Minimum trend score")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
