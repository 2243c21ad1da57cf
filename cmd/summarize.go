package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryOrTable string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize the contents of a table or query",
	Long: `The SUMMARIZE command can be used to easily compute a number of aggregates over a table or a query.
The SUMMARIZE command launches a query that computes a number of aggregates over all columns
(min, max, approx_unique, avg, std, q25, q50, q75, count), and returns these along with the column name,
column type, and the percentage of NULL values in the column.
Note that the quantiles and percentiles are approximate values.

To summarize the contents of a table, pass a table name:
  berlinstats summarize --table districts

To summarize a query, pass a query:
  berlinstats summarize --query "SELECT * FROM districts WHERE city = 'Berlin'"

Examples:
  berlinstats summarize --table districts
  berlinstats summarize --table community_progression
  berlinstats summarize --query "SELECT population, mosques FROM districts"`,
	Run: func(cmd *cobra.Command, args []string) {
		if queryOrTable == "" {
			HandleError(fmt.Errorf("table or query is required"), "Missing parameter")
		}

		store, cleanup := mustStore()
		defer cleanup()

		rows, err := mustQuerier(store).ExecuteQuery(SummarizeQuery(queryOrTable))
		if err != nil {
			HandleError(err, "Failed to execute summarize query")
		}

		printJSON(rows)
	},
}

// SummarizeQuery builds the DuckDB SUMMARIZE statement for a table name or
// a SELECT query
func SummarizeQuery(tableOrQuery string) string {
	return fmt.Sprintf("SUMMARIZE %s", tableOrQuery)
}

func init() {
	summarizeCmd.Flags().StringVarP(&queryOrTable, "table", "t", "", "Table name or query to summarize")
	summarizeCmd.Flags().StringVarP(&queryOrTable, "query", "q", "", "Query to summarize (alias for --table)")
	rootCmd.AddCommand(summarizeCmd)
}
