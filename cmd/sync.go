package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local data files with a remote API's figures",
	Long: `Download the districts, city summaries and communities of every city the
remote API knows and rewrite the CSV files in --data-dir. The local DuckDB
store is rebuilt from them on the next run.

Example:
  berlinstats sync --api-url https://stats.example.org --year 2024`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := SyncData(context.Background(), cfg); err != nil {
			HandleError(err, "Failed to sync data")
		}
		fmt.Printf("✓ Data files in %s updated\n", cfg.DataDir)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
