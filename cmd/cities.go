package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the cities with data",
	Long: `List the cities the data source has figures for, Berlin first.

Example:
  berlinstats cities`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		cities, err := store.ListCities(context.Background())
		if err != nil {
			HandleError(err, "Failed to list cities")
		}

		printJSON(cities)
	},
}

func init() {
	rootCmd.AddCommand(citiesCmd)
}
