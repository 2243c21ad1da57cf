package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

var districtCmd = &cobra.Command{
	Use:   "district [id]",
	Short: "Get one district by id",
	Long: `Get a single district with its population density.
Returns the district as JSON.

Example:
  berlinstats district 8`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			HandleError(err, "Invalid district id")
		}

		store, cleanup := mustStore()
		defer cleanup()

		d, err := store.GetDistrictByID(context.Background(), id)
		if errors.Is(err, analytics.ErrNotFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "No district found with ID: %d\n", id)
			return
		}
		if err != nil {
			HandleError(err, "Failed to get district")
		}

		printJSON(map[string]interface{}{
			"district": d,
			"density":  d.Density(),
		})
	},
}

func init() {
	rootCmd.AddCommand(districtCmd)
}
