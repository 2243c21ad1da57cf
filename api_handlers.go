package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"berlinstats/internal/analytics"
	"berlinstats/internal/export"
)

// APIHandler handles JSON API requests
type APIHandler struct {
	Source analytics.Source
	Briefs *BriefService
	City   string
	Year   int
}

// CommunityView is a community together with its derived trend
type CommunityView struct {
	analytics.Community
	Trend analytics.TrendDetail `json:"trend"`
}

func communityViews(communities []analytics.Community) []CommunityView {
	views := make([]CommunityView, len(communities))
	for i, c := range communities {
		views[i] = CommunityView{Community: c, Trend: analytics.NewTrendDetail(c)}
	}
	return views
}

// Cities handles API requests for the list of cities
func (h *APIHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Source.ListCities(r.Context())
	if err != nil {
		log.Printf("Cities error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to list cities",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// Districts handles API requests for the filtered district list
func (h *APIHandler) Districts(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)

	criteria, err := analytics.ParseFilterCriteria(r.URL.Query().Get)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	districts, err := h.Source.ListDistricts(r.Context(), city)
	if err != nil {
		log.Printf("Districts error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to list districts",
		})
		return
	}

	filtered := analytics.FilterDistricts(districts, criteria)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"city":      city,
		"districts": filtered,
		"count":     len(filtered),
		"total":     len(districts),
		"filters":   criteria,
	})
}

// GetDistrict handles API requests for a single district
func (h *APIHandler) GetDistrict(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid district id",
		})
		return
	}

	district, err := h.Source.GetDistrictByID(r.Context(), id)
	if err != nil {
		respondSourceError(w, "District", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"district": district,
		"density":  district.Density(),
	})
}

// Summary handles API requests for a city's yearly summary and its deltas
func (h *APIHandler) Summary(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)
	year, err := yearParam(r, h.Year)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	summary, err := h.Source.GetCitySummary(r.Context(), city, year)
	if err != nil {
		respondSourceError(w, "Summary", err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.NewCityOverview(city, year, summary))
}

// Communities handles API requests for a city's communities with trends
func (h *APIHandler) Communities(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)

	communities, err := h.Source.GetCommunityComposition(r.Context(), city)
	if err != nil {
		respondSourceError(w, "Communities", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"city":        city,
		"communities": communityViews(communities),
	})
}

// Compare handles API requests comparing two or three districts
func (h *APIHandler) Compare(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionParam(r, "ids")
	if err == nil && !sel.CanCompare() {
		err = fmt.Errorf("select at least %d districts to compare", analytics.MinComparison)
	}
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	districts, err := analytics.DistrictsByIDs(r.Context(), h.Source, sel.IDs())
	if err != nil {
		respondSourceError(w, "District", err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.BuildComparison(districts))
}

// ExportCSV handles downloads of a city report
func (h *APIHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r, h.City)
	year, err := yearParam(r, h.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := loadReport(r, h.Source, city, year)
	if err != nil {
		log.Printf("Export error: %v", err)
		http.Error(w, "Export failed: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report)))
	if err := export.WriteCSV(w, report); err != nil {
		log.Printf("CSV encoding error: %v", err)
	}
}

// Brief handles API requests for an AI district brief
func (h *APIHandler) Brief(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid district id",
		})
		return
	}

	district, err := h.Source.GetDistrictByID(r.Context(), id)
	if err != nil {
		respondSourceError(w, "District", err)
		return
	}

	if h.Briefs == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "Briefs not available: ANTHROPIC_API_KEY not set",
		})
		return
	}

	year, err := yearParam(r, h.Year)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	summary, err := h.Source.GetCitySummary(r.Context(), district.City, year)
	if err != nil {
		log.Printf("Summary error: %v", err)
	}

	var brief *DistrictBrief
	if r.URL.Query().Get("refresh") != "" {
		brief, err = h.Briefs.Regenerate(r.Context(), district, summary)
	} else {
		brief, err = h.Briefs.Brief(r.Context(), district, summary)
	}
	if err != nil {
		log.Printf("Brief error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Brief generation failed: " + err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"district": district,
		"brief":    brief,
	})
}

// loadReport fetches what a report needs and builds it. A failed fetch
// leaves its part not loaded.
func loadReport(r *http.Request, src analytics.Source, city string, year int) (export.Report, error) {
	s, err := src.GetCitySummary(r.Context(), city, year)
	summary := analytics.From(s, err)
	if err != nil {
		log.Printf("Summary error: %v", err)
	}

	c, err := src.GetCommunityComposition(r.Context(), city)
	communities := analytics.From(c, err)
	if err != nil {
		log.Printf("Communities error: %v", err)
	}

	return export.BuildReport(city, year, summary, communities)
}

func respondSourceError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, analytics.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error": what + " not found",
		})
		return
	}
	log.Printf("%s error: %v", what, err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "Internal server error",
	})
}

func cityParam(r *http.Request, fallback string) string {
	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		return city
	}
	if fallback != "" {
		return fallback
	}
	return analytics.DefaultCity
}

func yearParam(r *http.Request, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("year: %q is not a valid year", raw)
	}
	return year, nil
}

// parseIDs accepts repeated and comma-separated values ("1,2" or "1&ids=2").
func parseIDs(values []string) ([]int, error) {
	var ids []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%q is not a district id", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// selectionParam reads a comparison selection from the query. Duplicates and
// more than three ids are rejected rather than toggled away.
func selectionParam(r *http.Request, key string) (*analytics.Selection, error) {
	ids, err := parseIDs(r.URL.Query()[key])
	if err != nil {
		return nil, err
	}

	sel := &analytics.Selection{}
	for _, id := range ids {
		if sel.Contains(id) {
			return nil, fmt.Errorf("district %d selected twice", id)
		}
		if !sel.Toggle(id) {
			return nil, fmt.Errorf("at most %d districts can be compared", analytics.MaxComparison)
		}
	}
	return sel, nil
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}
