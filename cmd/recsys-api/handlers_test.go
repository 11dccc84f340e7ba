package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/cache"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/config"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

// newTestRouter wires the full frontend stack against a fake backend.
func newTestRouter(t *testing.T, backendHandler http.HandlerFunc) http.Handler {
	t.Helper()

	backendSrv := httptest.NewServer(backendHandler)
	t.Cleanup(backendSrv.Close)

	cfg := config.DefaultConfig()
	cfg.Backend.BaseURL = backendSrv.URL

	client := backend.NewClient(backend.Config{BaseURL: backendSrv.URL, Timeout: 5 * time.Second})
	logger := observability.Nop()
	events := eventlog.Nop{}

	orch := recommend.NewOrchestrator(client, events, logger, recommend.OrchestratorConfig{
		PageSize:         cfg.Query.PageSize,
		DebounceInterval: 10 * time.Millisecond,
	})
	t.Cleanup(orch.Close)

	trust := recommend.NewTrustFetcher(client, cache.NewMemoryClient(10), time.Minute, events)

	return NewRouter(logger, cfg, orch, trust, client, events)
}

func TestSearchEndpoint_ReturnsNormalizedPage(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/recommend":
			assert.Equal(t, "budget laptop", r.URL.Query().Get("prompt"))
			w.Write([]byte(`[
				{"asin":"A1","title":"X","score":0.9,"price":"61,200"},
				{"asin":"A2","title":"Y","score":0.5}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/search?prompt=budget+laptop&importance=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Products, 2)
	assert.Equal(t, "A1", resp.Products[0].ASIN)
	assert.Equal(t, "A2", resp.Products[1].ASIN)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, resp.Loading)
}

func TestSearchEndpoint_RequiresPrompt(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint_BackendErrorBecomesBadGateway(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to compute recommendations"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/search?prompt=laptop", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to compute recommendations", resp["error"])
}

func TestTrustEndpoint_ReturnsReport(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trust/A1", r.URL.Path)
		w.Write([]byte(`{"asin":"A1","trust_score":0.73}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trust/A1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report backend.TrustReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.TrustScore)
	assert.Equal(t, 0.73, *report.TrustScore)
}

func TestTrustEndpoint_BackendFailureLandsInReport(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server down"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trust/A1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "trust errors render in place, not as HTTP failures")

	var report backend.TrustReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "server down", report.Error)
}

func TestBundleEndpoint_MapsDetailToError(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limited"}`))
	})

	body, _ := json.Marshal(BundleRequestDTO{Prompt: "study setup"})
	req := httptest.NewRequest(http.MethodPost, "/api/bundle", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate limited", resp["error"])
}

func TestInputEndpoint_DebouncedPromptEventuallyFetches(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"asin":"A1","title":"X","score":0.9}]`))
	})

	for _, prompt := range []string{"l", "la", "laptop"} {
		body, _ := json.Marshal(InputRequestDTO{Prompt: &prompt})
		req := httptest.NewRequest(http.MethodPost, "/api/input", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var resp SearchResponseDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		return !resp.Loading && len(resp.Products) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}