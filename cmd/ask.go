package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"berlinstats/internal/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question using Claude AI via Fantasy",
	Long: `Ask a natural language question and get an AI-powered answer using Claude Haiku 4.5.
The model answers from the same data as the other commands, calling them as tools.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  berlinstats ask "Which Berlin districts have more than ten mosques?"
  berlinstats ask "How has the Syrian community grown since 2020?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := args[0]

		store, cleanup := mustStore()
		defer cleanup()

		answer, err := agent.GenerateResponse(
			context.Background(),
			question,
			rootCmd,
			agent.WithAPIKey(cfg.AnthropicAPIKey),
			agent.WithSource(store),
			agent.WithDefaults(cfg.City, cfg.Year),
		)
		if err != nil {
			HandleError(err, "Failed to generate response")
		}

		fmt.Println(answer)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
