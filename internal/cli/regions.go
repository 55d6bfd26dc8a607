package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/cluster"
)

// NewRegionsCmd creates the 'regions' command for dense region
// discovery.
func NewRegionsCmd() *cobra.Command {
	var (
		algorithm  string
		eps        float64
		minSamples int
		xi         float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Discover dense semantic regions in the trend space",
		Long: `Cluster the embedded trend corpus to find dense semantic regions.

Algorithms:
  dbscan    single DBSCAN run; eps and min-samples auto-estimated when omitted
  optics    single OPTICS run with xi cluster extraction
  adaptive  parameter sweep across both algorithms, best silhouette wins`,
		Example: `  trendscope regions
  trendscope regions --algorithm dbscan --eps 0.3 --min-samples 4
  trendscope regions --algorithm optics --xi 0.08
  trendscope regions --algorithm adaptive --json`,
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

			var clusterOpts []cluster.Option
			if cfg.Cluster.SweepTimeoutSeconds > 0 {
				clusterOpts = append(clusterOpts,
					cluster.WithSweepTimeout(time.Duration(cfg.Cluster.SweepTimeoutSeconds)*time.Second))
			}
			explorer := cluster.NewExplorer(store, clusterOpts...)
			ctx := cmd.Context()

			var result *cluster.Result
			switch strings.ToLower(algorithm) {
			case "dbscan":
				result, err = explorer.DiscoverDBSCAN(ctx, cluster.DBSCANOptions{
					Eps:        eps,
					MinSamples: minSamples,
				})
			case "optics":
				result, err = explorer.DiscoverOPTICS(ctx, cluster.OPTICSOptions{
					MinSamples: minSamples,
					Xi:         xi,
				})
			case "adaptive":
				result, err = explorer.DiscoverAdaptive(ctx)
			default:
				return fmt.Errorf("unknown algorithm %q (want dbscan, optics, or adaptive)", algorithm)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(result)
			}
			printRegions(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "adaptive", "Clustering algorithm: dbscan, optics, or adaptive")
	cmd.Flags().Float64Var(&eps, "eps", 0, "DBSCAN neighborhood radius (0 = auto-estimate)")
	cmd.Flags().IntVar(&minSamples, "min-samples", 0, "Minimum neighborhood size (0 = auto-derive)")
	cmd.Flags().Float64Var(&xi, "xi", 0, "OPTICS steepness threshold (0 = default 0.05)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printRegions(result *cluster.Result) {
	fmt.Printf("Algorithm: %s\n", result.Algorithm)
	fmt.Printf("Trends: %d  Clusters: %d  Noise: %d (%.1f%%)\n\n",
		result.TotalTrends, result.NClusters, result.NoisePoints, result.NoiseRatio*100)

	if comparison := result.AlgorithmComparison; comparison != nil {
		fmt.Printf("Adaptive winner: %s (silhouette %.3f, %d configurations tried)\n\n",
			comparison.BestAlgorithm, comparison.BestSilhouetteScore, comparison.AlgorithmsTried)
	}

	for _, region := range result.DenseRegions {
		fmt.Printf("Region %d: %d trends, density %.3f\n", region.ClusterID, region.Size, region.DensityScore)
		if len(region.Themes) > 0 {
			fmt.Printf("  themes: %s\n", strings.Join(region.Themes, ", "))
		}
		fmt.Printf("  scores: mean %.2f (min %.2f, max %.2f)\n",
			region.ScoreStats.Mean, region.ScoreStats.Min, region.ScoreStats.Max)
		for _, sample := range region.SampleTrends {
			fmt.Printf("  - %s\n", sample.Text)
		}
		fmt.Println()
	}

	if len(result.DenseRegions) == 0 {
		fmt.Println("No dense regions found; every trend is noise at these parameters.")
	}
}
