package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Procedure names of the demographics API.
const (
	ProcCities               = "demographics.cities"
	ProcDistrictsList        = "districts.list"
	ProcDistrictByID         = "districts.getById"
	ProcCitySummary          = "demographics.citySummary"
	ProcCommunityComposition = "demographics.communityComposition"
)

// Procedures lists every procedure the API serves.
var Procedures = []string{
	ProcCities,
	ProcDistrictsList,
	ProcDistrictByID,
	ProcCitySummary,
	ProcCommunityComposition,
}

// CityInput is the input of districts.list and communityComposition.
type CityInput struct {
	City string `json:"city"`
}

// IDInput is the input of districts.getById.
type IDInput struct {
	ID int `json:"id"`
}

// SummaryInput is the input of demographics.citySummary.
type SummaryInput struct {
	City string `json:"city"`
	Year int    `json:"year"`
}

// Envelope is the body of every procedure response.
type Envelope struct {
	Result *ResultBody `json:"result,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ResultBody wraps the payload of a successful call.
type ResultBody struct {
	Data json.RawMessage `json:"data"`
}

// ErrorBody describes a failed call. Code is the HTTP status.
type ErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewResult marshals v into a success envelope.
func NewResult(v any) (Envelope, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode result: %w", err)
	}
	return Envelope{Result: &ResultBody{Data: raw}}, nil
}

// NewError builds an error envelope.
func NewError(code int, message string) Envelope {
	return Envelope{Error: &ErrorBody{Message: message, Code: code}}
}

// Unwrap strips a superjson wrapper ({"json": ...}) if there is one.
// Anything else is returned unchanged.
func Unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return raw
	}
	inner, ok := wrapper["json"]
	if !ok {
		return raw
	}
	for k := range wrapper {
		if k != "json" && k != "meta" {
			return raw
		}
	}
	return inner
}
