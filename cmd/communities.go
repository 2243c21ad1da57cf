package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

// CommunityOutput is a community with its trend summary
type CommunityOutput struct {
	analytics.Community
	Trend analytics.TrendDetail `json:"trend"`
}

var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "List a city's foreign communities with their population trends",
	Long: `List the foreign communities of a city by rank, each with its yearly
population, overall change, step changes and sparkline points.

Example:
  berlinstats communities --city Berlin`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		communities, err := store.GetCommunityComposition(context.Background(), cfg.City)
		if err != nil {
			HandleError(err, "Failed to get communities")
		}

		out := make([]CommunityOutput, len(communities))
		for i, c := range communities {
			out[i] = CommunityOutput{Community: c, Trend: analytics.NewTrendDetail(c)}
		}
		printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(communitiesCmd)
}
