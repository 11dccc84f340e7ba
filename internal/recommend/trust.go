package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/cache"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
)

// TrustClient is the slice of the backend API the trust fetcher needs.
type TrustClient interface {
	Trust(ctx context.Context, asin string) (*backend.TrustReport, error)
}

// TrustState tracks one in-flight or completed trust lookup. It exists only
// between the moment a lookup begins and the moment it is dismissed.
type TrustState struct {
	ASIN    string               `json:"asin"`
	Loading bool                 `json:"loading"`
	Data    *backend.TrustReport `json:"data"`
}

// TrustFetcher runs per-product trust lookups. At most one TrustState is
// active at a time; opening a lookup for a different product supersedes the
// previous one, and a late result for a superseded product is dropped by
// identity comparison on the ASIN.
type TrustFetcher struct {
	client TrustClient
	cache  cache.Client // optional
	ttl    time.Duration
	events eventlog.Logger

	mu     sync.Mutex
	active *TrustState
}

// NewTrustFetcher creates a trust fetcher. The cache client may be nil to
// disable caching.
func NewTrustFetcher(client TrustClient, cc cache.Client, ttl time.Duration, events eventlog.Logger) *TrustFetcher {
	if events == nil {
		events = eventlog.Nop{}
	}
	return &TrustFetcher{
		client: client,
		cache:  cc,
		ttl:    ttl,
		events: events,
	}
}

// Open begins a lookup for the given product, superseding any previous one,
// and returns once the state shows loading. The result lands asynchronously.
func (f *TrustFetcher) Open(ctx context.Context, asin string) {
	f.mu.Lock()
	f.active = &TrustState{ASIN: asin, Loading: true}
	f.mu.Unlock()

	go func() {
		report := f.Report(ctx, asin)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.active == nil || f.active.ASIN != asin {
			// Superseded or dismissed while in flight; the result is
			// simply not observed.
			return
		}
		f.active = &TrustState{ASIN: asin, Loading: false, Data: report}
	}()
}

// Report fetches a trust report synchronously, consulting the cache first.
// Failures are folded into the report's Error field rather than returned:
// the trust workflow renders errors in place of trust content.
func (f *TrustFetcher) Report(ctx context.Context, asin string) *backend.TrustReport {
	if f.cache != nil {
		if data, err := f.cache.Get(ctx, cache.TrustKey(asin)); err == nil {
			var cached backend.TrustReport
			if json.Unmarshal(data, &cached) == nil {
				return &cached
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			f.events.Log(eventlog.LevelWarn, "trust cache read failed", map[string]any{
				"asin":  asin,
				"error": err.Error(),
			})
		}
	}

	report, err := f.client.Trust(ctx, asin)
	if err != nil {
		f.events.Log(eventlog.LevelError, "trust lookup failed", map[string]any{
			"asin":  asin,
			"error": err.Error(),
		})
		return &backend.TrustReport{ASIN: asin, Error: err.Error()}
	}

	if f.cache != nil && report.Error == "" {
		if data, err := json.Marshal(report); err == nil {
			_ = f.cache.Set(ctx, cache.TrustKey(asin), data, f.ttl)
		}
	}

	return report
}

// Dismiss clears the active trust state.
func (f *TrustFetcher) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = nil
}

// Active returns a copy of the active trust state, or nil when none.
func (f *TrustFetcher) Active() *TrustState {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active == nil {
		return nil
	}
	snap := *f.active
	return &snap
}
