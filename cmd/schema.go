package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SchemaTables are the tables of the local store
var SchemaTables = []string{"districts", "city_snapshots", "communities", "community_progression", "brief_cache"}

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
}

// ColumnInfo represents information about a single column
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Retrieve a summary of the DuckDB database schema",
	Long: `Retrieve a summary of the local DuckDB database schema.
This command returns information about all tables and their columns in the database.

Examples:
  berlinstats schema`,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		q := mustQuerier(store)
		schemas := make([]SchemaOutput, 0, len(SchemaTables))
		for _, tableName := range SchemaTables {
			schema, err := TableSchema(q, tableName)
			if err != nil {
				// Skip tables that don't exist
				continue
			}
			schemas = append(schemas, schema)
		}

		printJSON(schemas)
	},
}

// TableSchema retrieves schema information for a specific table
func TableSchema(q Querier, tableName string) (SchemaOutput, error) {
	rows, err := q.ExecuteQuery(fmt.Sprintf("PRAGMA table_info('%s')", tableName))
	if err != nil {
		return SchemaOutput{}, fmt.Errorf("failed to get schema for table %s: %w", tableName, err)
	}

	schema := SchemaOutput{
		TableName: tableName,
		Columns:   []ColumnInfo{},
	}

	for _, row := range rows {
		// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
		name, _ := row["name"].(string)
		colType, _ := row["type"].(string)

		nullable := "YES"
		switch notnull := row["notnull"].(type) {
		case bool:
			if notnull {
				nullable = "NO"
			}
		case string:
			if notnull == "1" || notnull == "true" {
				nullable = "NO"
			}
		}

		schema.Columns = append(schema.Columns, ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: nullable,
		})
	}

	schema.ColumnCount = len(schema.Columns)

	return schema, nil
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
