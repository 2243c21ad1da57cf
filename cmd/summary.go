package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Get a city's yearly summary with year-over-year changes",
	Long: `Get the city snapshot for --year and the most recent earlier one, with
the percent change of population, mosques, churches and synagogues.
Changes are 0 when either year is missing.

Examples:
  berlinstats summary
  berlinstats summary --city Hamburg --year 2023`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		s, err := store.GetCitySummary(context.Background(), cfg.City, cfg.Year)
		if err != nil {
			HandleError(err, "Failed to get city summary")
		}

		printJSON(analytics.NewCityOverview(cfg.City, cfg.Year, s))
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
