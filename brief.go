package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"berlinstats/internal/analytics"
)

const briefModel = anthropic.ModelClaudeHaiku4_5_20251001

// DistrictBrief is a generated narrative about one district
type DistrictBrief struct {
	DistrictID      int       `json:"district_id"`
	DistrictName    string    `json:"district_name"`
	MarkdownContent string    `json:"markdown_content"`
	GeneratedAt     time.Time `json:"generated_at"`
	Cached          bool      `json:"cached"`
}

// BriefService writes district briefs with Claude and caches them in the store
type BriefService struct {
	client   *anthropic.Client
	db       *DB
	cacheTTL time.Duration

	// generate sends a prompt and returns the text answer
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewBriefService creates a new brief service. db may be nil, which disables caching.
func NewBriefService(apiKey string, db *DB) (*BriefService, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Error("Brief service initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	s := &BriefService{
		client:   &client,
		db:       db,
		cacheTTL: 30 * 24 * time.Hour,
	}
	s.generate = s.callClaude

	if logger != nil {
		logger.Info("Brief service initialized", "cache_ttl_days", 30, "caching", db != nil)
	}

	return s, nil
}

// BriefPrompt builds the prompt for a district and its city's context
func BriefPrompt(d analytics.DistrictRecord, summary analytics.CitySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a short, neutral demographic brief about the district %s in %s.\n\n", d.DisplayName(), d.City)
	b.WriteString("**District figures:**\n")
	fmt.Fprintf(&b, "- Population: %s\n", analytics.FormatCount(d.Population))
	fmt.Fprintf(&b, "- Area: %s\n", analytics.FormatArea(d.Area))
	fmt.Fprintf(&b, "- Density: %s inhabitants/km²\n", analytics.FormatCount(d.Density()))
	fmt.Fprintf(&b, "- Foreign residents: %s\n", analytics.FormatPercent(d.ForeignerPercentage))
	if d.DominantCommunity != "" {
		fmt.Fprintf(&b, "- Largest foreign community: %s\n", d.DominantCommunity)
	}
	fmt.Fprintf(&b, "- Mosques: %s, churches: %s, synagogues: %s\n",
		countOrUnknown(d.Mosques), countOrUnknown(d.Churches), countOrUnknown(d.Synagogues))

	if summary.Current != nil {
		change := analytics.InfrastructureDeltas(summary)
		fmt.Fprintf(&b, "\n**%s as a whole (%d):**\n", d.City, summary.Current.Year)
		fmt.Fprintf(&b, "- Population: %s (%s)\n", analytics.FormatCount(summary.Current.TotalPopulation), analytics.FormatPercentChange(change.Population))
		fmt.Fprintf(&b, "- Mosques: %d (%s)\n", summary.Current.MosquesCount, analytics.FormatPercentChange(change.Mosques))
		fmt.Fprintf(&b, "- Churches: %d (%s)\n", summary.Current.ChurchesCount, analytics.FormatPercentChange(change.Churches))
		fmt.Fprintf(&b, "- Synagogues: %d (%s)\n", summary.Current.SynagoguesCount, analytics.FormatPercentChange(change.Synagogues))
	}

	b.WriteString(`
**Output Format:**
Markdown with a one-paragraph overview followed by a "Key figures" bullet list
comparing the district with the city. Only use the figures above; do not invent
numbers. Keep it under 250 words.`)

	return b.String()
}

func countOrUnknown(p *int) string {
	if p == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *p)
}

// Brief returns the brief of a district, from the cache when it is fresh enough
func (s *BriefService) Brief(ctx context.Context, d analytics.DistrictRecord, summary analytics.CitySummary) (*DistrictBrief, error) {
	if cached := s.Cached(d); cached != nil {
		if logger != nil {
			logger.Info("Returning cached district brief", "district_id", d.ID, "cache_age_hours", int(time.Since(cached.GeneratedAt).Hours()))
		}
		return cached, nil
	}

	return s.Regenerate(ctx, d, summary)
}

// Cached returns the stored brief of a district, or nil when there is none
func (s *BriefService) Cached(d analytics.DistrictRecord) *DistrictBrief {
	if s.db == nil {
		return nil
	}
	content, generatedAt, err := s.db.LoadBrief(d.ID, s.cacheTTL)
	if err != nil {
		return nil
	}
	return &DistrictBrief{
		DistrictID:      d.ID,
		DistrictName:    d.DisplayName(),
		MarkdownContent: content,
		GeneratedAt:     generatedAt,
		Cached:          true,
	}
}

// Regenerate always asks Claude and refreshes the cache
func (s *BriefService) Regenerate(ctx context.Context, d analytics.DistrictRecord, summary analytics.CitySummary) (*DistrictBrief, error) {
	text, err := s.generate(ctx, BriefPrompt(d, summary))
	if err != nil {
		if logger != nil {
			logger.Error("Failed to generate district brief", "error", err, "district_id", d.ID, "district", d.Name)
		}
		return nil, err
	}

	brief := &DistrictBrief{
		DistrictID:      d.ID,
		DistrictName:    d.DisplayName(),
		MarkdownContent: text,
		GeneratedAt:     time.Now(),
	}

	if s.db != nil {
		if err := s.db.SaveBrief(d.ID, brief.DistrictName, string(briefModel), text, brief.GeneratedAt); err != nil {
			// the brief is still usable
			if logger != nil {
				logger.Warn("Failed to cache district brief", "error", err, "district_id", d.ID)
			}
		}
	}

	return brief, nil
}

func (s *BriefService) callClaude(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     briefModel,
		MaxTokens: 1500,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Claude API call failed", "error", err, "model", "haiku-4.5")
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	responseText := ""
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			responseText += textBlock.Text
		}
	}

	if responseText == "" {
		if logger != nil {
			logger.Error("No text content in Claude API response", "content_blocks", len(message.Content))
		}
		return "", fmt.Errorf("no text response from Claude")
	}

	if logger != nil {
		logger.Info("Generated district brief", slog.Int("response_length", len(responseText)))
	}

	return responseText, nil
}
