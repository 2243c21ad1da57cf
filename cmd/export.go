package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
	"berlinstats/internal/export"
)

var (
	exportOut      string
	exportPostgres bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a city report as CSV or to PostgreSQL",
	Long: `Export the city report for --city and --year: total population, the
foreign communities with their latest share and trend, and the infrastructure
counts with their year-over-year change.

The CSV goes to --out (default <city>-demographics-<year>.csv). With
--postgres the report is also upserted into the database configured by
POSTGRES_DSN or the POSTGRES_* variables.

Examples:
  berlinstats export
  berlinstats export --city Hamburg --out hamburg.csv
  berlinstats export --postgres`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		ctx := context.Background()
		s, err := store.GetCitySummary(ctx, cfg.City, cfg.Year)
		summary := analytics.From(s, err)
		c, err := store.GetCommunityComposition(ctx, cfg.City)
		communities := analytics.From(c, err)

		report, err := export.BuildReport(cfg.City, cfg.Year, summary, communities)
		if err != nil {
			if summary.IsError() {
				err = summary.Err
			} else if communities.IsError() {
				err = communities.Err
			}
			HandleError(err, "Failed to build report")
		}

		path := exportOut
		if path == "" {
			path = export.FileName(report)
		}

		csvWriter, err := export.NewCSVWriter(path)
		if err != nil {
			HandleError(err, "Failed to create CSV file")
		}
		writers := []export.ReportWriter{csvWriter}

		if exportPostgres {
			pgWriter, err := export.NewPostgresWriter(cfg.DSN(), 5)
			if err != nil {
				csvWriter.Close()
				HandleError(err, "Failed to connect to PostgreSQL")
			}
			writers = append(writers, pgWriter)
		}

		for _, w := range writers {
			if err := w.Write(report); err != nil {
				HandleError(err, "Failed to write report")
			}
			if err := w.Close(); err != nil {
				HandleError(err, "Failed to close report writer")
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		if exportPostgres {
			fmt.Fprintf(cmd.ErrOrStderr(), "Stored report for %s %d in PostgreSQL\n", report.City, report.Year)
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "CSV output path")
	exportCmd.Flags().BoolVar(&exportPostgres, "postgres", false, "Also store the report in PostgreSQL")
	rootCmd.AddCommand(exportCmd)
}
