package cmd

import (
	"github.com/spf13/cobra"

	"berlinstats/internal/config"
)

var (
	cfg = config.Load()

	rootCmd = &cobra.Command{
		Use:   "berlinstats",
		Short: "Berlin Stats - Explore district demographics and religious infrastructure",
		Long: `Berlin Stats is a CLI/TUI application for exploring the demographic
figures of Berlin's districts (and other cities): population, foreign
communities and their growth, and mosques, churches and synagogues over time.

When run without commands, it launches an interactive TUI.
Use subcommands for CLI mode with JSON output.

Data comes from the local DuckDB store in --data-dir, or from a remote
demographics API when --api-url is set.`,
		Run: func(cmd *cobra.Command, args []string) {
			// No subcommand specified - launch TUI
			LaunchTUI(cfg)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "Directory containing CSV data files")
	rootCmd.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Base URL of a remote demographics API (overrides the local store)")
	rootCmd.PersistentFlags().StringVarP(&cfg.City, "city", "c", cfg.City, "City to show")
	rootCmd.PersistentFlags().IntVarP(&cfg.Year, "year", "y", cfg.Year, "Year of the city summary")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// RootCommand exposes the command tree, for deriving agent tools
func RootCommand() *cobra.Command {
	return rootCmd
}
