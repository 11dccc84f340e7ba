// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/config"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

// NewRouter creates the frontend API router with all routes configured.
func NewRouter(
	logger *observability.Logger,
	cfg *config.Config,
	orch *recommend.Orchestrator,
	trust *recommend.TrustFetcher,
	client *backend.Client,
	events eventlog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"recsys-api"}`))
	})

	h := NewAPIHandler(logger, orch, trust, client, events)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Post("/input", h.Input)
		r.Get("/state", h.State)
		r.Get("/trust/{asin}", h.Trust)
		r.Post("/bundle", h.Bundle)
	})

	return r
}
