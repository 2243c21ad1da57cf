package analytics

import (
	"context"
	"errors"
)

// DefaultCity is used when no city was chosen.
const DefaultCity = "Berlin"

// ErrNotFound is returned by a Source when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Source delivers the pre-aggregated data every view is built from.
// Implementations: the local DuckDB store and the remote API client.
type Source interface {
	ListCities(ctx context.Context) ([]string, error)
	ListDistricts(ctx context.Context, city string) ([]DistrictRecord, error)
	GetDistrictByID(ctx context.Context, id int) (DistrictRecord, error)
	GetCitySummary(ctx context.Context, city string, year int) (CitySummary, error)
	GetCommunityComposition(ctx context.Context, city string) ([]Community, error)
}

// DistrictsByIDs fetches the given districts in order, stopping at the
// first failure.
func DistrictsByIDs(ctx context.Context, src Source, ids []int) ([]DistrictRecord, error) {
	out := make([]DistrictRecord, 0, len(ids))
	for _, id := range ids {
		d, err := src.GetDistrictByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
