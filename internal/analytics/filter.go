package analytics

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter field names, shared by query strings, forms and CLI flags.
const (
	FieldMinMosques    = "minMosques"
	FieldMaxMosques    = "maxMosques"
	FieldMinChurches   = "minChurches"
	FieldMaxChurches   = "maxChurches"
	FieldMinSynagogues = "minSynagogues"
	FieldMaxSynagogues = "maxSynagogues"
)

// FilterFields lists the six bounds in display order.
var FilterFields = []string{
	FieldMinMosques, FieldMaxMosques,
	FieldMinChurches, FieldMaxChurches,
	FieldMinSynagogues, FieldMaxSynagogues,
}

// FilterCriteria bounds the infrastructure counts of a district.
// A nil bound imposes no constraint. Min > Max is allowed and matches nothing.
type FilterCriteria struct {
	MinMosques    *int `json:"minMosques,omitempty"`
	MaxMosques    *int `json:"maxMosques,omitempty"`
	MinChurches   *int `json:"minChurches,omitempty"`
	MaxChurches   *int `json:"maxChurches,omitempty"`
	MinSynagogues *int `json:"minSynagogues,omitempty"`
	MaxSynagogues *int `json:"maxSynagogues,omitempty"`
}

// IsEmpty reports whether no bound is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.MinMosques == nil && c.MaxMosques == nil &&
		c.MinChurches == nil && c.MaxChurches == nil &&
		c.MinSynagogues == nil && c.MaxSynagogues == nil
}

// Values returns the criteria as field name to string, with unset bounds
// as empty strings. Used to refill forms.
func (c FilterCriteria) Values() map[string]string {
	out := make(map[string]string, len(FilterFields))
	for _, f := range FilterFields {
		out[f] = ""
		if p := c.bound(f); p != nil {
			out[f] = strconv.Itoa(*p)
		}
	}
	return out
}

func (c FilterCriteria) bound(field string) *int {
	switch field {
	case FieldMinMosques:
		return c.MinMosques
	case FieldMaxMosques:
		return c.MaxMosques
	case FieldMinChurches:
		return c.MinChurches
	case FieldMaxChurches:
		return c.MaxChurches
	case FieldMinSynagogues:
		return c.MinSynagogues
	case FieldMaxSynagogues:
		return c.MaxSynagogues
	}
	return nil
}

func (c *FilterCriteria) set(field string, v *int) {
	switch field {
	case FieldMinMosques:
		c.MinMosques = v
	case FieldMaxMosques:
		c.MaxMosques = v
	case FieldMinChurches:
		c.MinChurches = v
	case FieldMaxChurches:
		c.MaxChurches = v
	case FieldMinSynagogues:
		c.MinSynagogues = v
	case FieldMaxSynagogues:
		c.MaxSynagogues = v
	}
}

// ParseFilterCriteria builds criteria from raw field values as typed into a
// form. Blank values leave a bound unset; anything else must be a
// non-negative integer.
func ParseFilterCriteria(get func(field string) string) (FilterCriteria, error) {
	var c FilterCriteria
	for _, f := range FilterFields {
		raw := strings.TrimSpace(get(f))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("%s: %q is not a whole number", f, raw)
		}
		if n < 0 {
			return FilterCriteria{}, fmt.Errorf("%s: must not be negative", f)
		}
		c.set(f, IntPtr(n))
	}
	return c, nil
}

// Matches reports whether the district satisfies every set bound.
// Unknown counts are compared as 0.
func Matches(d DistrictRecord, c FilterCriteria) bool {
	return within(countOrZero(d.Mosques), c.MinMosques, c.MaxMosques) &&
		within(countOrZero(d.Churches), c.MinChurches, c.MaxChurches) &&
		within(countOrZero(d.Synagogues), c.MinSynagogues, c.MaxSynagogues)
}

// FilterDistricts returns the districts matching c, keeping their order.
// A nil or empty input yields an empty, non-nil slice.
func FilterDistricts(districts []DistrictRecord, c FilterCriteria) []DistrictRecord {
	out := make([]DistrictRecord, 0, len(districts))
	for _, d := range districts {
		if Matches(d, c) {
			out = append(out, d)
		}
	}
	return out
}

func within(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func countOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
