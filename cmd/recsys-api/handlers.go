package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

// APIHandler exposes the client pipeline as JSON endpoints. It stands in for
// the demo UI: the orchestrator behind it is the single source of truth.
type APIHandler struct {
	logger *observability.Logger
	orch   *recommend.Orchestrator
	trust  *recommend.TrustFetcher
	client *backend.Client
	events eventlog.Logger
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(
	logger *observability.Logger,
	orch *recommend.Orchestrator,
	trust *recommend.TrustFetcher,
	client *backend.Client,
	events eventlog.Logger,
) *APIHandler {
	return &APIHandler{
		logger: logger,
		orch:   orch,
		trust:  trust,
		client: client,
		events: events,
	}
}

// SearchResponseDTO is the page payload returned by Search and State.
type SearchResponseDTO struct {
	Products   []recommend.Product  `json:"products"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	PriceRange recommend.PriceRange `json:"price_range"`
	Loading    bool                 `json:"loading"`
	Error      string               `json:"error,omitempty"`
}

// Search runs a one-shot query: commit the prompt, fetch, pipeline, page.
// GET /api/search?prompt=&importance=&sort=&page=
func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prompt := q.Get("prompt")
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	importance := 30
	if v := q.Get("importance"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "importance must be an integer")
			return
		}
		importance = n
	}

	h.orch.SetSortKey(recommend.ParseSortKey(q.Get("sort")))
	h.orch.Query(r.Context(), prompt, importance)
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			h.orch.SetPage(n)
		}
	}

	state := h.orch.State()
	if state.Error != "" {
		writeError(w, http.StatusBadGateway, state.Error)
		return
	}

	h.writePage(w, state)
}

// InputRequestDTO carries incremental edits from the UI.
type InputRequestDTO struct {
	Prompt          *string `json:"prompt,omitempty"`
	PriceImportance *int    `json:"price_importance,omitempty"`
	SortKey         *string `json:"sort_key,omitempty"`
	Page            *int    `json:"page,omitempty"`
}

// Input feeds edits into the state machine: prompt changes go through the
// debounced controller, everything else applies synchronously.
// POST /api/input
func (h *APIHandler) Input(w http.ResponseWriter, r *http.Request) {
	var req InputRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Prompt != nil {
		h.orch.SetPrompt(*req.Prompt)
	}
	if req.PriceImportance != nil {
		h.orch.SetPriceImportance(*req.PriceImportance)
	}
	if req.SortKey != nil {
		h.orch.SetSortKey(recommend.ParseSortKey(*req.SortKey))
	}
	if req.Page != nil {
		h.orch.SetPage(*req.Page)
	}

	h.writePage(w, h.orch.State())
}

// State returns the current query state's visible page.
// GET /api/state
func (h *APIHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, h.orch.State())
}

// Trust returns the trust report for one product, cache-aware.
// GET /api/trust/{asin}
func (h *APIHandler) Trust(w http.ResponseWriter, r *http.Request) {
	asin := chi.URLParam(r, "asin")
	if asin == "" {
		writeError(w, http.StatusBadRequest, "asin is required")
		return
	}

	report := h.trust.Report(r.Context(), asin)
	writeJSON(w, http.StatusOK, report)
}

// BundleRequestDTO is the bundle generation request body.
type BundleRequestDTO struct {
	Prompt string `json:"prompt"`
}

// Bundle proxies a one-shot bundle generation.
// POST /api/bundle
func (h *APIHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	var req BundleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	bundle, err := h.client.GenerateBundle(r.Context(), req.Prompt)
	if err != nil {
		h.events.Log(eventlog.LevelError, "bundle generation failed", map[string]any{
			"prompt": req.Prompt,
			"error":  err.Error(),
		})
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (h *APIHandler) writePage(w http.ResponseWriter, state recommend.QueryState) {
	pageItems, page, totalPages := recommend.Paginate(state.Products, state.Page, state.PageSize)
	writeJSON(w, http.StatusOK, SearchResponseDTO{
		Products:   pageItems,
		Page:       page,
		TotalPages: totalPages,
		PriceRange: state.PriceRange,
		Loading:    state.Loading,
		Error:      state.Error,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
