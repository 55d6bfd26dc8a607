package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendscope/trendscope/internal/version"
)

// NewVersionCmd creates the 'version' command.
func NewVersionCmd() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version, commit hash, and build date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, c, d := version.GetVersionComponents()
			fmt.Printf("Version:  %s\n", v)
			fmt.Printf("Commit:   %s\n", c)
			fmt.Printf("Built:    %s\n", d)

			if checkUpdate {
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				newer, err := version.CheckUpdate(ctx)
				if err != nil {
					return fmt.Errorf("update check failed: %w", err)
				}
				if newer != "" {
					fmt.Printf("\nA newer version is available: %s\n", newer)
				} else {
					fmt.Println("\nUp to date.")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "Check GitHub for a newer release")

	return cmd
}
