package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewClearCmd creates the 'clear' command for deleting stored trends.
func NewClearCmd() *cobra.Command {
	var (
		runID string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored trends",
		Long:  `Delete every stored trend, or just the records of one analysis run with --run.`,
		Example: `  trendscope clear
  trendscope clear --run run_20240801_120000
  trendscope clear --force`,
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
			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Println("Store is already empty.")
				return nil
			}

			if !force {
				target := fmt.Sprintf("all %d trends", count)
				if runID != "" {
					target = fmt.Sprintf("run %s", runID)
				}
				fmt.Printf("Delete %s? [y/N] ", target)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if runID != "" {
				if err := store.DeleteRun(ctx, runID); err != nil {
					return err
				}
				fmt.Printf("Deleted run %s\n", runID)
				return nil
			}

			if err := store.Clear(ctx); err != nil {
				return err
			}
			fmt.Printf("Deleted %d trends\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Delete only this analysis run")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}
