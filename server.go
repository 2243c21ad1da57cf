package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"berlinstats/internal/analytics"
)

// ServerConfig holds configuration for the web server
type ServerConfig struct {
	Port   int
	Source analytics.Source
	Briefs *BriefService
	City   string
	Year   int
}

// NewRouter wires the HTML pages, the JSON API and the procedure endpoint
func NewRouter(config ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	webHandler := NewWebHandler(config.Source, config.Briefs, config.City, config.Year)
	r.Get("/", webHandler.HomePage)
	r.Get("/districts", webHandler.DistrictsPage)
	r.Get("/districts/{id}", webHandler.DistrictDetail)
	r.Post("/districts/{id}/brief", webHandler.GenerateBrief)
	r.Get("/compare", webHandler.ComparePage)
	r.Get("/cities", webHandler.CitiesPage)
	r.Get("/communities/{name}", webHandler.CommunityPage)

	apiHandler := &APIHandler{Source: config.Source, Briefs: config.Briefs, City: config.City, Year: config.Year}
	trpcHandler := &TRPCHandler{Source: config.Source}
	r.Route("/api", func(r chi.Router) {
		r.Get("/cities", apiHandler.Cities)
		r.Get("/districts", apiHandler.Districts)
		r.Get("/districts/{id}", apiHandler.GetDistrict)
		r.Post("/districts/{id}/brief", apiHandler.Brief)
		r.Get("/summary", apiHandler.Summary)
		r.Get("/communities", apiHandler.Communities)
		r.Get("/compare", apiHandler.Compare)
		r.Get("/export.csv", apiHandler.ExportCSV)
		r.Get("/trpc/{procedure}", trpcHandler.Procedure)
	})

	return r
}

// StartServer initializes and starts the HTTP server
func StartServer(config ServerConfig) error {
	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("Starting server on http://localhost%s", addr)
	return http.ListenAndServe(addr, NewRouter(config))
}
