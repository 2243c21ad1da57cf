package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

// DistrictsOutput is the JSON shape of the districts command
type DistrictsOutput struct {
	City      string                     `json:"city"`
	Districts []analytics.DistrictRecord `json:"districts"`
	Count     int                        `json:"count"`
	Total     int                        `json:"total"`
	Filters   analytics.FilterCriteria   `json:"filters"`
}

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "List a city's districts, optionally filtered by infrastructure counts",
	Long: `List the districts of a city. The six bounds are inclusive and optional;
a district with an unknown count is treated as having 0.

Examples:
  berlinstats districts
  berlinstats districts --minMosques 10
  berlinstats districts --city Hamburg --minChurches 20 --maxChurches 40`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		criteria, err := analytics.ParseFilterCriteria(func(field string) string {
			v, _ := cmd.Flags().GetString(field)
			return v
		})
		if err != nil {
			HandleError(err, "Invalid filter")
		}

		store, cleanup := mustStore()
		defer cleanup()

		all, err := store.ListDistricts(context.Background(), cfg.City)
		if err != nil {
			HandleError(err, "Failed to list districts")
		}

		filtered := analytics.FilterDistricts(all, criteria)
		printJSON(DistrictsOutput{
			City:      cfg.City,
			Districts: filtered,
			Count:     len(filtered),
			Total:     len(all),
			Filters:   criteria,
		})
	},
}

func init() {
	for _, field := range analytics.FilterFields {
		districtsCmd.Flags().String(field, "", "Inclusive bound ("+field+")")
	}
	rootCmd.AddCommand(districtsCmd)
}
