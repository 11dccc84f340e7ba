package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestClient_RecommendSendsPromptAndSlider(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recommend", r.URL.Path)
		assert.Equal(t, "gaming laptop", r.URL.Query().Get("prompt"))
		assert.Equal(t, "70", r.URL.Query().Get("slider"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"asin":"A1"}]`))
	})

	raw, err := client.Recommend(context.Background(), "gaming laptop", 70)

	require.NoError(t, err)
	assert.JSONEq(t, `[{"asin":"A1"}]`, string(raw))
}

func TestClient_RecommendRejectsInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json`))
	})

	_, err := client.Recommend(context.Background(), "laptop", 30)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestClient_RecommendExtractsBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  "Failed to compute recommendations",
			"detail": "index not built",
		})
	})

	_, err := client.Recommend(context.Background(), "laptop", 30)

	require.Error(t, err)
	assert.Equal(t, "index not built", err.Error(), "detail takes precedence over error")
}

func TestClient_TrustParsesReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trust/B0TEST", r.URL.Path)
		w.Write([]byte(`{"asin":"B0TEST","trust_score":0.81,"explanations":["consistent ratings"]}`))
	})

	report, err := client.Trust(context.Background(), "B0TEST")

	require.NoError(t, err)
	require.NotNil(t, report.TrustScore)
	assert.Equal(t, 0.81, *report.TrustScore)
	assert.Equal(t, []string{"consistent ratings"}, report.Explanations)
}

func TestClient_TrustRawBodyBecomesErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server down"))
	})

	_, err := client.Trust(context.Background(), "A1")

	require.Error(t, err)
	assert.Equal(t, "server down", err.Error())
}

func TestClient_GenerateBundleSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate_bundle", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "study setup", body["prompt"])

		w.Write([]byte(`{"bundle":[{"asin":"A1","title":"Desk lamp","price":899,"trust":0.7}],"justification":"pairs well"}`))
	})

	bundle, err := client.GenerateBundle(context.Background(), "study setup")

	require.NoError(t, err)
	require.Len(t, bundle.Bundle, 1)
	assert.Equal(t, "A1", bundle.Bundle[0].ASIN)
	require.NotNil(t, bundle.Bundle[0].Price)
	assert.Equal(t, 899.0, *bundle.Bundle[0].Price)
	assert.Equal(t, "pairs well", bundle.Justification)
	assert.NotEmpty(t, bundle.Raw)
}

func TestClient_GenerateBundleExtractsDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limited"}`))
	})

	_, err := client.GenerateBundle(context.Background(), "study setup")

	require.Error(t, err)
	assert.Equal(t, "rate limited", err.Error())
}

func TestClient_GenerateBundleFallsBackToStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GenerateBundle(context.Background(), "study setup")

	require.Error(t, err)
	assert.Equal(t, "backend returned status 502", err.Error())
}

func TestClient_LogIgnoresResponse(t *testing.T) {
	var received atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var entry LogEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		assert.Equal(t, "error", entry.Level)
		assert.Equal(t, "recommend failed", entry.Message)
		received.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Log(context.Background(), LogEntry{
		Level:   "error",
		Message: "recommend failed",
		Meta:    map[string]any{"prompt": "laptop"},
		TS:      time.Now().UTC().Format(time.RFC3339),
	})

	assert.NoError(t, err, "non-success status on the log endpoint is not an error")
	assert.Equal(t, int32(1), received.Load())
}

func TestClient_TransportFailure(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})

	_, err := client.Recommend(context.Background(), "laptop", 30)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestClient_DefaultBaseURL(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, "http://127.0.0.1:5000", client.BaseURL())
}
