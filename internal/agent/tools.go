package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"github.com/spf13/cobra"

	"berlinstats/internal/analytics"
)

// Querier runs raw SQL against the local store
type Querier interface {
	ExecuteQuery(query string) ([]map[string]interface{}, error)
}

// Toolbox answers tool calls from a data source. City and Year are used
// when a call leaves them out.
type Toolbox struct {
	Source analytics.Source
	City   string
	Year   int
}

type cityInput struct {
	City string `json:"city,omitempty" description:"City name, for example Berlin or Hamburg (default: the configured city)"`
}

type summaryInput struct {
	City string `json:"city,omitempty" description:"City name (default: the configured city)"`
	Year int    `json:"year,omitempty" description:"Year of the summary, for example 2024 (default: the configured year)"`
}

type districtsInput struct {
	City          string `json:"city,omitempty" description:"City name (default: the configured city)"`
	MinMosques    *int   `json:"minMosques,omitempty" description:"Minimum number of mosques, inclusive"`
	MaxMosques    *int   `json:"maxMosques,omitempty" description:"Maximum number of mosques, inclusive"`
	MinChurches   *int   `json:"minChurches,omitempty" description:"Minimum number of churches, inclusive"`
	MaxChurches   *int   `json:"maxChurches,omitempty" description:"Maximum number of churches, inclusive"`
	MinSynagogues *int   `json:"minSynagogues,omitempty" description:"Minimum number of synagogues, inclusive"`
	MaxSynagogues *int   `json:"maxSynagogues,omitempty" description:"Maximum number of synagogues, inclusive"`
}

// criteria rejects negative bounds like ParseFilterCriteria does for forms
func (in districtsInput) criteria() (analytics.FilterCriteria, error) {
	bounds := map[string]*int{
		analytics.FieldMinMosques:    in.MinMosques,
		analytics.FieldMaxMosques:    in.MaxMosques,
		analytics.FieldMinChurches:   in.MinChurches,
		analytics.FieldMaxChurches:   in.MaxChurches,
		analytics.FieldMinSynagogues: in.MinSynagogues,
		analytics.FieldMaxSynagogues: in.MaxSynagogues,
	}
	for _, field := range analytics.FilterFields {
		if v := bounds[field]; v != nil && *v < 0 {
			return analytics.FilterCriteria{}, fmt.Errorf("%s: must not be negative", field)
		}
	}
	return analytics.FilterCriteria{
		MinMosques:    in.MinMosques,
		MaxMosques:    in.MaxMosques,
		MinChurches:   in.MinChurches,
		MaxChurches:   in.MaxChurches,
		MinSynagogues: in.MinSynagogues,
		MaxSynagogues: in.MaxSynagogues,
	}, nil
}

type districtInput struct {
	ID int `json:"id" description:"The district id"`
}

type compareInput struct {
	IDs []int `json:"ids" description:"Two or three district ids"`
}

type queryInput struct {
	SQL string `json:"sql" description:"DuckDB SQL query, for example SELECT name, mosques FROM districts"`
}

type summarizeInput struct {
	Table string `json:"table" description:"Table name or SELECT query to summarize"`
}

func (b *Toolbox) city(c string) string {
	if c != "" {
		return c
	}
	if b.City != "" {
		return b.City
	}
	return analytics.DefaultCity
}

// Cities lists the cities with data
func (b *Toolbox) Cities(ctx context.Context, _ struct{}) (interface{}, error) {
	return b.Source.ListCities(ctx)
}

// Districts lists a city's districts within the given bounds
func (b *Toolbox) Districts(ctx context.Context, in districtsInput) (interface{}, error) {
	criteria, err := in.criteria()
	if err != nil {
		return nil, err
	}
	all, err := b.Source.ListDistricts(ctx, b.city(in.City))
	if err != nil {
		return nil, err
	}
	return analytics.FilterDistricts(all, criteria), nil
}

// District returns one district with its density
func (b *Toolbox) District(ctx context.Context, in districtInput) (interface{}, error) {
	d, err := b.Source.GetDistrictByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"district": d, "density": d.Density()}, nil
}

// Summary returns a city's yearly summary with its changes
func (b *Toolbox) Summary(ctx context.Context, in summaryInput) (interface{}, error) {
	year := in.Year
	if year == 0 {
		year = b.Year
	}
	city := b.city(in.City)
	s, err := b.Source.GetCitySummary(ctx, city, year)
	if err != nil {
		return nil, err
	}
	return analytics.NewCityOverview(city, year, s), nil
}

// Communities returns the foreign communities with their trends
func (b *Toolbox) Communities(ctx context.Context, in cityInput) (interface{}, error) {
	communities, err := b.Source.GetCommunityComposition(ctx, b.city(in.City))
	if err != nil {
		return nil, err
	}
	details := make([]analytics.TrendDetail, len(communities))
	for i, c := range communities {
		details[i] = analytics.NewTrendDetail(c)
	}
	return details, nil
}

// Compare builds the side-by-side comparison of two or three districts
func (b *Toolbox) Compare(ctx context.Context, in compareInput) (interface{}, error) {
	sel := analytics.NewSelection()
	for _, id := range in.IDs {
		if sel.Contains(id) || !sel.Toggle(id) {
			return nil, fmt.Errorf("ids must be %d to %d distinct districts", analytics.MinComparison, analytics.MaxComparison)
		}
	}
	if !sel.CanCompare() {
		return nil, fmt.Errorf("select at least %d districts to compare", analytics.MinComparison)
	}
	districts, err := analytics.DistrictsByIDs(ctx, b.Source, sel.IDs())
	if err != nil {
		return nil, err
	}
	return analytics.BuildComparison(districts), nil
}

func (b *Toolbox) querier() (Querier, error) {
	q, ok := b.Source.(Querier)
	if !ok {
		return nil, fmt.Errorf("SQL is only available on the local store")
	}
	return q, nil
}

// Query runs SQL against the local store
func (b *Toolbox) Query(ctx context.Context, in queryInput) (interface{}, error) {
	if in.SQL == "" {
		return nil, fmt.Errorf("sql parameter is required")
	}
	q, err := b.querier()
	if err != nil {
		return nil, err
	}
	return q.ExecuteQuery(in.SQL)
}

// Schema describes the local store's tables
func (b *Toolbox) Schema(ctx context.Context, _ struct{}) (interface{}, error) {
	q, err := b.querier()
	if err != nil {
		return nil, err
	}
	return q.ExecuteQuery("SELECT table_name, column_name, data_type, is_nullable FROM information_schema.columns ORDER BY table_name, ordinal_position")
}

// Summarize aggregates the columns of a table or query
func (b *Toolbox) Summarize(ctx context.Context, in summarizeInput) (interface{}, error) {
	if in.Table == "" {
		return nil, fmt.Errorf("table parameter is required")
	}
	q, err := b.querier()
	if err != nil {
		return nil, err
	}
	return q.ExecuteQuery("SUMMARIZE " + in.Table)
}

// jsonTool wraps a toolbox method; failures are reported to the model as
// error responses so it can correct its call
func jsonTool[T any](name, description string, fn func(ctx context.Context, in T) (interface{}, error)) fantasy.AgentTool {
	return fantasy.NewAgentTool(name, description, func(ctx context.Context, in T, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
		result, err := fn(ctx, in)
		if err != nil {
			return fantasy.NewTextErrorResponse(err.Error()), nil
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fantasy.ToolResponse{}, fmt.Errorf("failed to encode result as JSON: %w", err)
		}
		return fantasy.NewTextResponse(string(jsonBytes)), nil
	})
}

// CreateToolsFromCommands creates Fantasy tools for the registered Cobra
// commands that have one, except for the specified exclusions
func CreateToolsFromCommands(rootCmd *cobra.Command, box *Toolbox, exclusions []string) []fantasy.AgentTool {
	var tools []fantasy.AgentTool

	for _, cobraCmd := range rootCmd.Commands() {
		skip := false
		for _, excl := range exclusions {
			if cobraCmd.Use == excl || strings.HasPrefix(cobraCmd.Use, excl+" ") {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		if tool := createToolForCommand(cobraCmd, box); tool != nil {
			tools = append(tools, tool)
		}
	}

	return tools
}

// createToolForCommand returns nil for commands without a tool
func createToolForCommand(cobraCmd *cobra.Command, box *Toolbox) fantasy.AgentTool {
	cmdName := commandName(cobraCmd)

	description := cobraCmd.Short
	if description == "" {
		description = fmt.Sprintf("Execute the %s command", cmdName)
	}

	switch cmdName {
	case "cities":
		return jsonTool(cmdName, description, box.Cities)
	case "districts":
		return jsonTool(cmdName, description, box.Districts)
	case "district":
		return jsonTool(cmdName, description, box.District)
	case "summary":
		return jsonTool(cmdName, description, box.Summary)
	case "communities":
		return jsonTool(cmdName, description, box.Communities)
	case "compare":
		return jsonTool(cmdName, description, box.Compare)
	case "query":
		return jsonTool(cmdName, description, box.Query)
	case "schema":
		return jsonTool(cmdName, description, box.Schema)
	case "summarize":
		return jsonTool(cmdName, description, box.Summarize)
	}
	return nil
}

// commandName is the first word of a command's Use line
func commandName(cobraCmd *cobra.Command) string {
	return strings.Split(cobraCmd.Use, " ")[0]
}
