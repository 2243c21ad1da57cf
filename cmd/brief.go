package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

var briefRefresh bool

var briefCmd = &cobra.Command{
	Use:   "brief [id]",
	Short: "Write a short AI brief about a district",
	Long: `Write a short demographic brief about a district using Claude Haiku 4.5.
Briefs are cached in the local store for 30 days; --refresh writes a new one.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  berlinstats brief 8`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			HandleError(err, "Invalid district id")
		}

		store, cleanup := mustStore()
		defer cleanup()

		brief, err := WriteBrief(context.Background(), store, cfg, id, briefRefresh)
		if err != nil {
			HandleError(err, "Failed to write brief")
		}

		printJSON(brief)
	},
}

func init() {
	briefCmd.Flags().BoolVar(&briefRefresh, "refresh", false, "Ignore the cached brief")
	rootCmd.AddCommand(briefCmd)
}
