package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"berlinstats/internal/analytics"
	"berlinstats/internal/config"
)

// Store is the data source of the CLI commands: the local DuckDB store or
// the remote API client
type Store interface {
	analytics.Source
	Close() error
}

// Querier runs raw SQL. Only the local store implements it.
type Querier interface {
	ExecuteQuery(query string) ([]map[string]interface{}, error)
}

// BriefOutput is a generated district brief
type BriefOutput struct {
	DistrictID      int       `json:"district_id"`
	DistrictName    string    `json:"district_name"`
	MarkdownContent string    `json:"markdown_content"`
	GeneratedAt     time.Time `json:"generated_at"`
	Cached          bool      `json:"cached"`
}

// These variables will be set by main package
var (
	LaunchTUI   func(cfg *config.Config)
	InitStore   func(cfg *config.Config) (Store, func(), error)
	StartServer func(store Store, cfg *config.Config) error
	WriteBrief  func(ctx context.Context, store Store, cfg *config.Config, id int, refresh bool) (*BriefOutput, error)
	SyncData    func(ctx context.Context, cfg *config.Config) error
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}

// mustStore opens the store or exits
func mustStore() (Store, func()) {
	store, cleanup, err := InitStore(cfg)
	if err != nil {
		HandleError(err, "Failed to initialize data source")
	}
	return store, cleanup
}

// mustQuerier returns the store's SQL interface or exits
func mustQuerier(store Store) Querier {
	q, ok := store.(Querier)
	if !ok {
		HandleError(fmt.Errorf("SQL queries need the local store, not --api-url"), "Unsupported operation")
	}
	return q
}

func printJSON(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		HandleError(err, "Failed to encode JSON")
	}
	fmt.Println(string(output))
}
