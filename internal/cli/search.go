package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/search"
	"github.com/trendscope/trendscope/internal/trend"
)

// NewSearchCmd creates the 'search' command for hybrid trend search.
func NewSearchCmd() *cobra.Command {
	var (
		topK       int
		category   string
		minScore   float64
		afterDate  string
		beforeDate string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored trends",
		Long: `Search trends with hybrid retrieval: semantic similarity over
embeddings fused with keyword matching. Without an OpenAI key the
search degrades to keyword-only.`,
		Example: `  trendscope search "ai developer tools"
  trendscope search "rust adoption" --top-k 5 --category emerging_topics
  trendscope search "build times" --min-score 0.5 --after 2024-01-01 --json`,
		Args: cobra.MinimumNArgs(1),
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

			opts := search.Options{
				TopK:       topK,
				Category:   trend.Category(category),
				AfterDate:  afterDate,
				BeforeDate: beforeDate,
			}
			if cmd.Flags().Changed("min-score") {
				opts.MinScore = &minScore
			}

			results, err := index.Search(ctx, strings.Join(args, " "), opts)
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

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "Number of results")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by insight category")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Filter by minimum trend score")
	cmd.Flags().StringVar(&afterDate, "after", "", "Only trends on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&beforeDate, "before", "", "Only trends on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printResults(results []search.Result) {
	if len(results) == 0 {
		fmt.Println("No matching trends.")
		return
	}

	fmt.Printf("Found %d trends:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%2d. %s\n", i+1, r.Text)
		fmt.Printf("    category: %s  score: %.2f  date: %s  relevance: %.3f\n",
			r.Metadata.Category, r.Metadata.Score, r.Metadata.Date, r.Score)
	}
}
