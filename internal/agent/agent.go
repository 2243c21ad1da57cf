package agent

import (
	"context"
	"fmt"
	"os"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

const (
	defaultModel        = "claude-haiku-4-5"
	defaultSystemPrompt = "You are a helpful assistant specializing in the demographics of Berlin and other German cities: district populations, foreign communities and their growth, and the number of mosques, churches and synagogues. You have tools that read these figures. Use them instead of guessing, quote the numbers you used, and say so when the data does not cover a question."
)

// DefaultExclusions are the commands that never become tools
var DefaultExclusions = []string{"serve", "ask", "export", "brief", "sync"}

// AgentConfig holds the configuration for creating an ask agent
type AgentConfig struct {
	apiKey       string
	model        string
	systemPrompt string
	exclusions   []string
	source       analytics.Source
	city         string
	year         int
}

// AgentOption is a functional option for configuring the agent
type AgentOption func(*AgentConfig) error

// WithAPIKey sets the Anthropic API key
func WithAPIKey(apiKey string) AgentOption {
	return func(c *AgentConfig) error {
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithAPIKeyFromEnv sets the API key from the ANTHROPIC_API_KEY environment variable
func WithAPIKeyFromEnv() AgentOption {
	return func(c *AgentConfig) error {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithModel sets the Claude model to use (default: claude-haiku-4-5)
func WithModel(model string) AgentOption {
	return func(c *AgentConfig) error {
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		c.model = model
		return nil
	}
}

// WithSystemPrompt sets a custom system prompt
func WithSystemPrompt(prompt string) AgentOption {
	return func(c *AgentConfig) error {
		c.systemPrompt = prompt
		return nil
	}
}

// WithToolExclusions sets command names to exclude from tool generation
func WithToolExclusions(exclusions []string) AgentOption {
	return func(c *AgentConfig) error {
		c.exclusions = exclusions
		return nil
	}
}

// WithSource sets the data source the tools read from
func WithSource(src analytics.Source) AgentOption {
	return func(c *AgentConfig) error {
		if src == nil {
			return fmt.Errorf("source cannot be nil")
		}
		c.source = src
		return nil
	}
}

// WithDefaults sets the city and year used when a question names none
func WithDefaults(city string, year int) AgentOption {
	return func(c *AgentConfig) error {
		c.city = city
		c.year = year
		return nil
	}
}

func newConfig(opts ...AgentOption) (*AgentConfig, error) {
	config := &AgentConfig{
		model:        defaultModel,
		systemPrompt: defaultSystemPrompt,
		exclusions:   DefaultExclusions,
		city:         analytics.DefaultCity,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if config.apiKey == "" {
		return nil, fmt.Errorf("API key is required (use WithAPIKey or WithAPIKeyFromEnv)")
	}
	if config.source == nil {
		return nil, fmt.Errorf("data source is required (use WithSource)")
	}
	return config, nil
}

// NewAskAgent creates a Fantasy agent answering demographic questions with
// one tool per eligible command of rootCmd
func NewAskAgent(rootCmd *cobra.Command, opts ...AgentOption) (fantasy.Agent, error) {
	config, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	provider, err := anthropic.New(anthropic.WithAPIKey(config.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	ctx := context.Background()

	model, err := provider.LanguageModel(ctx, config.model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Claude model: %w", err)
	}

	box := &Toolbox{Source: config.source, City: config.city, Year: config.year}
	agentTools := CreateToolsFromCommands(rootCmd, box, config.exclusions)

	agent := fantasy.NewAgent(
		model,
		fantasy.WithSystemPrompt(config.systemPrompt),
		fantasy.WithTools(agentTools...),
	)

	return agent, nil
}

// GenerateResponse is a convenience function that creates an agent and generates a response in one call
func GenerateResponse(ctx context.Context, question string, rootCmd *cobra.Command, opts ...AgentOption) (string, error) {
	agent, err := NewAskAgent(rootCmd, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create agent: %w", err)
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: question})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return result.Response.Content.Text(), nil
}
