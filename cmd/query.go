package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryString string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the database (DuckDB SQL)",
	Long: `Execute the requested QUERY against the local DuckDB store.
The query can be any valid DuckDB SQL query, including SELECT, DESCRIBE, SHOW TABLES, etc.

Examples:
  berlinstats query --sql "SELECT name, mosques FROM districts ORDER BY mosques DESC LIMIT 5"
  berlinstats query --sql "SELECT city, COUNT(*) AS districts FROM districts GROUP BY city"
  berlinstats query --sql "SHOW TABLES"`,
	Run: func(cmd *cobra.Command, args []string) {
		if queryString == "" {
			HandleError(fmt.Errorf("query is required"), "Missing query parameter")
		}

		store, cleanup := mustStore()
		defer cleanup()

		rows, err := mustQuerier(store).ExecuteQuery(queryString)
		if err != nil {
			HandleError(err, "Failed to execute query")
		}

		printJSON(rows)
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryString, "sql", "q", "", "SQL query to execute (required)")
	_ = queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}
