package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

var compareCmd = &cobra.Command{
	Use:   "compare [id...]",
	Short: "Compare two or three districts side by side",
	Long: `Compare 2 to 3 districts by population, area and foreign share.
Returns one card per district and one group per metric.

Example:
  berlinstats compare 1 8 3`,
	Args: cobra.RangeArgs(analytics.MinComparison, analytics.MaxComparison),
	Run: func(cmd *cobra.Command, args []string) {
		sel, err := SelectionFromArgs(args)
		if err != nil {
			HandleError(err, "Invalid selection")
		}

		store, cleanup := mustStore()
		defer cleanup()

		districts, err := analytics.DistrictsByIDs(context.Background(), store, sel.IDs())
		if err != nil {
			HandleError(err, "Failed to get districts")
		}

		printJSON(analytics.BuildComparison(districts))
	},
}

// SelectionFromArgs builds a comparison selection from district ids,
// rejecting repeats and more ids than can be compared
func SelectionFromArgs(args []string) (*analytics.Selection, error) {
	sel := analytics.NewSelection()
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid district id %q", arg)
		}
		if sel.Contains(id) {
			return nil, fmt.Errorf("district %d given twice", id)
		}
		if !sel.Toggle(id) {
			return nil, fmt.Errorf("at most %d districts can be compared", analytics.MaxComparison)
		}
	}
	if !sel.CanCompare() {
		return nil, fmt.Errorf("select at least %d districts to compare", analytics.MinComparison)
	}
	return sel, nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
