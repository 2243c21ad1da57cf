package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"berlinstats/internal/analytics"
	"berlinstats/internal/remote"
)

// TRPCHandler serves the query procedures the remote client speaks, so one
// instance can act as the API of another.
type TRPCHandler struct {
	Source analytics.Source
}

// Procedure handles GET /api/trpc/{procedure}?input=<json>
func (h *TRPCHandler) Procedure(w http.ResponseWriter, r *http.Request) {
	procedure := chi.URLParam(r, "procedure")
	ctx := r.Context()

	var input json.RawMessage
	if raw := strings.TrimSpace(r.URL.Query().Get("input")); raw != "" {
		input = remote.Unwrap(json.RawMessage(raw))
	}

	var (
		payload interface{}
		err     error
	)

	switch procedure {
	case remote.ProcCities:
		payload, err = h.Source.ListCities(ctx)

	case remote.ProcDistrictsList:
		var in remote.CityInput
		if !decodeInput(w, procedure, input, &in) {
			return
		}
		payload, err = h.Source.ListDistricts(ctx, defaultCity(in.City))

	case remote.ProcDistrictByID:
		var in remote.IDInput
		if !decodeInput(w, procedure, input, &in) {
			return
		}
		payload, err = h.Source.GetDistrictByID(ctx, in.ID)

	case remote.ProcCitySummary:
		var in remote.SummaryInput
		if !decodeInput(w, procedure, input, &in) {
			return
		}
		if in.Year <= 0 {
			respondTRPC(w, remote.NewError(http.StatusBadRequest, "year is required"))
			return
		}
		payload, err = h.Source.GetCitySummary(ctx, defaultCity(in.City), in.Year)

	case remote.ProcCommunityComposition:
		var in remote.CityInput
		if !decodeInput(w, procedure, input, &in) {
			return
		}
		payload, err = h.Source.GetCommunityComposition(ctx, defaultCity(in.City))

	default:
		respondTRPC(w, remote.NewError(http.StatusNotFound, "No procedure found on path \""+procedure+"\""))
		return
	}

	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			respondTRPC(w, remote.NewError(http.StatusNotFound, err.Error()))
			return
		}
		log.Printf("Procedure %s error: %v", procedure, err)
		respondTRPC(w, remote.NewError(http.StatusInternalServerError, "Internal server error"))
		return
	}

	env, err := remote.NewResult(payload)
	if err != nil {
		log.Printf("Procedure %s encoding error: %v", procedure, err)
		respondTRPC(w, remote.NewError(http.StatusInternalServerError, "Internal server error"))
		return
	}
	respondTRPC(w, env)
}

func decodeInput(w http.ResponseWriter, procedure string, input json.RawMessage, out interface{}) bool {
	if len(input) == 0 {
		return true
	}
	if err := json.Unmarshal(input, out); err != nil {
		respondTRPC(w, remote.NewError(http.StatusBadRequest, procedure+": invalid input: "+err.Error()))
		return false
	}
	return true
}

func defaultCity(city string) string {
	if strings.TrimSpace(city) == "" {
		return analytics.DefaultCity
	}
	return city
}

func respondTRPC(w http.ResponseWriter, env remote.Envelope) {
	status := http.StatusOK
	if env.Error != nil {
		status = env.Error.Code
	}
	respondJSON(w, status, env)
}
