package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP web server.

The web server provides a browser-based dashboard with the same views as the
TUI, a JSON API under /api, and the tRPC-style procedures under /api/trpc that
another berlinstats instance can use as its --api-url.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port to run the server on")
}

func runServe() {
	store, cleanup := mustStore()
	defer cleanup()

	fmt.Printf("Starting Berlin Stats web server...\n")
	if cfg.UsesRemote() {
		fmt.Printf("Data source: %s\n", cfg.APIURL)
	} else {
		fmt.Printf("Data directory: %s\n", cfg.DataDir)
	}
	fmt.Printf("Port: %d\n\n", cfg.Port)

	if err := StartServer(store, cfg); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
