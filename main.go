package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"berlinstats/cmd"
	"berlinstats/internal/analytics"
	"berlinstats/internal/config"
	"berlinstats/internal/remote"
)

var logger *slog.Logger

// setupLogger creates and configures the application logger
func setupLogger(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logPath := filepath.Join(dataDir, "err.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0", "data_dir", dataDir)

	return nil
}

// renderMarkdown renders markdown content with glamour for terminal display
func renderMarkdown(content string, width int) (string, error) {
	// borders, padding and glamour's own gutter
	const glamourGutter = 2
	const borderWidth = 4

	renderWidth := width - borderWidth - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}

	return renderer.Render(content)
}

// remoteStore lets the API client stand in for the local store
type remoteStore struct {
	*remote.Client
}

func (r remoteStore) Close() error {
	r.Flush()
	return nil
}

func newRemoteClient(cfg *config.Config) *remote.Client {
	return remote.New(cfg.APIURL,
		remote.WithCacheTTL(cfg.CacheTTL),
		remote.WithMaxRetries(cfg.MaxRetries),
		remote.WithLogger(logger),
	)
}

// openStore returns the configured data source. With interactive set, the
// user is asked before the bundled data files are written.
func openStore(cfg *config.Config, interactive bool) (cmd.Store, error) {
	if cfg.UsesRemote() {
		if logger != nil {
			logger.Info("Using remote data source", "api_url", cfg.APIURL)
		}
		return remoteStore{newRemoteClient(cfg)}, nil
	}

	missing, err := CheckDataFiles(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check data files: %w", err)
	}

	if len(missing) > 0 {
		if interactive && !PromptUserForSeed(missing) {
			if logger != nil {
				logger.Warn("User declined to write the bundled data files", "missing_files", len(missing))
			}
			return nil, fmt.Errorf("missing required data files")
		}
		if !interactive {
			fmt.Fprintf(os.Stderr, "Writing bundled data files to %s\n", cfg.DataDir)
		}
		if err := WriteSeedFiles(cfg.DataDir, missing); err != nil {
			return nil, err
		}
	}

	db, err := NewDB(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// newBriefs returns nil when no API key is configured. Briefs are only
// cached when the local store is in use.
func newBriefs(store cmd.Store, cfg *config.Config) *BriefService {
	if cfg.AnthropicAPIKey == "" {
		return nil
	}
	db, _ := store.(*DB)
	briefs, err := NewBriefService(cfg.AnthropicAPIKey, db)
	if err != nil {
		if logger != nil {
			logger.Warn("Brief service initialization failed", "error", err)
		}
		return nil
	}
	return briefs
}

// launchTUI starts the interactive dashboard
func launchTUI(cfg *config.Config) {
	if err := setupLogger(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
	}

	store, err := openStore(cfg, true)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open data source", "error", err, "data_dir", cfg.DataDir)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	briefs := newBriefs(store, cfg)

	fmt.Println("\n📊 Berlin Stats Configuration:")
	if cfg.UsesRemote() {
		fmt.Printf("   • Data source: %s\n", cfg.APIURL)
	} else {
		fmt.Printf("   • Data source: %s\n", cfg.DataDir)
	}
	if briefs != nil {
		fmt.Println("   • District briefs: ✓ Available")
	} else {
		fmt.Println("   • District briefs: ✗ Not configured (set ANTHROPIC_API_KEY)")
	}
	fmt.Println()

	p := tea.NewProgram(
		initialModel(store, briefs, cfg.City, cfg.Year),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// initStore opens the data source for CLI commands
func initStore(cfg *config.Config) (cmd.Store, func(), error) {
	if err := setupLogger(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		store.Close()
	}
	return store, cleanup, nil
}

func startServer(store cmd.Store, cfg *config.Config) error {
	return StartServer(ServerConfig{
		Port:   cfg.Port,
		Source: store,
		Briefs: newBriefs(store, cfg),
		City:   cfg.City,
		Year:   cfg.Year,
	})
}

func writeBrief(ctx context.Context, store cmd.Store, cfg *config.Config, id int, refresh bool) (*cmd.BriefOutput, error) {
	briefs := newBriefs(store, cfg)
	if briefs == nil {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	d, err := store.GetDistrictByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := store.GetCitySummary(ctx, d.City, cfg.Year)
	if err != nil {
		summary = analytics.CitySummary{}
	}

	var brief *DistrictBrief
	if refresh {
		brief, err = briefs.Regenerate(ctx, d, summary)
	} else {
		brief, err = briefs.Brief(ctx, d, summary)
	}
	if err != nil {
		return nil, err
	}

	return &cmd.BriefOutput{
		DistrictID:      brief.DistrictID,
		DistrictName:    brief.DistrictName,
		MarkdownContent: brief.MarkdownContent,
		GeneratedAt:     brief.GeneratedAt,
		Cached:          brief.Cached,
	}, nil
}

// syncData replaces the local data files with the remote API's figures
func syncData(ctx context.Context, cfg *config.Config) error {
	if !cfg.UsesRemote() {
		return fmt.Errorf("no API URL configured (use --api-url or BERLINSTATS_API_URL)")
	}
	if err := setupLogger(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	client := newRemoteClient(cfg)
	cities, err := client.ListCities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cities: %w", err)
	}

	fmt.Printf("Syncing %d cities from %s...\n", len(cities), cfg.APIURL)
	if err := PullDataFiles(ctx, client, cfg.DataDir, cities, cfg.Year); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("Data files synced", "cities", len(cities), "api_url", cfg.APIURL, "year", cfg.Year)
	}
	return nil
}

func main() {
	cmd.LaunchTUI = launchTUI
	cmd.InitStore = initStore
	cmd.StartServer = startServer
	cmd.WriteBrief = writeBrief
	cmd.SyncData = syncData

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
