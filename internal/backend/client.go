// Package backend provides the HTTP client for the recommendation backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the recommendation backend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Config holds backend client configuration.
type Config struct {
	BaseURL string // Default: http://127.0.0.1:5000
	Timeout time.Duration
}

// NewClient creates a new backend client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:5000"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TrustReport is the backend's per-product trust payload.
type TrustReport struct {
	ASIN         string   `json:"asin,omitempty"`
	TrustScore   *float64 `json:"trust_score,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Explanations []string `json:"explanations,omitempty"`
	Explain      string   `json:"explain,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Bundle is the backend's generated-bundle payload.
type Bundle struct {
	Bundle        []BundleItem    `json:"bundle"`
	Justification string          `json:"justification,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// BundleItem is one product in a generated bundle.
type BundleItem struct {
	ASIN  string         `json:"asin"`
	Title string         `json:"title"`
	Price *float64       `json:"price"`
	Trust float64        `json:"trust"`
	Flags map[string]any `json:"flags,omitempty"`
}

// LogEntry is the payload for the backend log endpoint.
type LogEntry struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
	TS      string         `json:"ts"`
}

// Recommend issues a recommend query and returns the raw JSON payload.
// The payload is left unparsed; the normalizer tolerates any JSON value.
func (c *Client) Recommend(ctx context.Context, prompt string, priceImportance int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("prompt", prompt)
	q.Set("slider", strconv.Itoa(priceImportance))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/recommend?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("decode response: invalid JSON")
	}

	return json.RawMessage(body), nil
}

// Trust fetches the trust report for a single product.
func (c *Client) Trust(ctx context.Context, asin string) (*TrustReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/trust/"+url.PathEscape(asin), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var report TrustReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &report, nil
}

// GenerateBundle requests a complementary-product bundle for the prompt.
func (c *Client) GenerateBundle(ctx context.Context, prompt string) (*Bundle, error) {
	jsonBody, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate_bundle", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var bundle Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	bundle.Raw = json.RawMessage(body)

	return &bundle, nil
}

// Log ships a log entry to the backend. The response body is ignored;
// callers treat delivery as best-effort.
func (c *Client) Log(ctx context.Context, entry LogEntry) error {
	jsonBody, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/log", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// do sends the request and returns the body, mapping non-success statuses
// to a single human-readable error.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s", extractErrorMessage(body, resp.StatusCode))
	}

	return body, nil
}

// extractErrorMessage pulls a structured error out of a failure body,
// preferring "detail" then "error", falling back to the raw text.
func extractErrorMessage(body []byte, status int) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" {
		return text
	}
	return fmt.Sprintf("backend returned status %d", status)
}
