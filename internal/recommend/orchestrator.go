package recommend

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
)

// RecommendClient is the slice of the backend API the orchestrator needs.
type RecommendClient interface {
	Recommend(ctx context.Context, prompt string, priceImportance int) (json.RawMessage, error)
}

// QueryState is the single source of truth for the recommendation view.
type QueryState struct {
	Prompt          string     `json:"prompt"`
	DebouncedPrompt string     `json:"debounced_prompt"`
	PriceImportance int        `json:"price_importance"`
	PriceRange      PriceRange `json:"price_range"`
	SortKey         SortKey    `json:"sort_key"`
	Page            int        `json:"page"`
	PageSize        int        `json:"page_size"`
	Products        []Product  `json:"products"`
	Loading         bool       `json:"loading"`
	Error           string     `json:"error,omitempty"`
}

// OrchestratorConfig holds orchestrator construction parameters.
type OrchestratorConfig struct {
	PageSize         int
	DebounceInterval time.Duration
	PriceImportance  int
}

// Orchestrator owns the recommend request lifecycle: it triggers fetches,
// tracks loading and error state, applies the filter/sort/paginate pipeline,
// and reconciles concurrent responses against the single QueryState.
//
// Every request carries a sequence number; a completed response whose
// sequence number is below the latest issued is discarded outright, so a
// stale response can never overwrite a fresher result.
type Orchestrator struct {
	client RecommendClient
	events eventlog.Logger
	log    *observability.Logger

	mu        sync.Mutex
	state     QueryState
	batch     []Product // normalized batch before the local pipeline
	issuedSeq uint64

	debouncer *Debouncer
}

// NewOrchestrator creates an orchestrator around the given backend client.
// The event logger and diagnostic logger are injected so tests can record
// or silence them.
func NewOrchestrator(client RecommendClient, events eventlog.Logger, log *observability.Logger, cfg OrchestratorConfig) *Orchestrator {
	if events == nil {
		events = eventlog.Nop{}
	}
	if log == nil {
		log = observability.Nop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 6
	}

	importance := clampInt(cfg.PriceImportance, 0, 100)

	o := &Orchestrator{
		client: client,
		events: events,
		log:    log.WithOperation("recommend"),
		state: QueryState{
			PriceImportance: importance,
			PriceRange:      PriceRangeFor(importance),
			SortKey:         SortBestMatch,
			Page:            1,
			PageSize:        cfg.PageSize,
		},
	}
	o.debouncer = NewDebouncer(cfg.DebounceInterval, o.commitPrompt)
	return o
}

// SetPrompt records a raw prompt edit. The change propagates to the
// debounced prompt, and from there to a fetch, only once the input has
// been quiet for the configured interval.
func (o *Orchestrator) SetPrompt(prompt string) {
	o.mu.Lock()
	o.state.Prompt = prompt
	o.mu.Unlock()

	o.debouncer.Set(prompt)
}

// commitPrompt is the debouncer's emit target: it settles the prompt and
// auto-triggers a fetch when it is non-empty.
func (o *Orchestrator) commitPrompt(prompt string) {
	o.mu.Lock()
	o.state.DebouncedPrompt = prompt
	o.mu.Unlock()

	if prompt != "" {
		go o.Refresh(context.Background())
	}
}

// SetPriceImportance updates the importance scalar. The price range is
// recomputed synchronously and the local pipeline re-applied before this
// method returns; a fresh fetch follows because the slider is also a
// request parameter.
func (o *Orchestrator) SetPriceImportance(importance int) {
	importance = clampInt(importance, 0, 100)

	o.mu.Lock()
	o.state.PriceImportance = importance
	o.state.PriceRange = PriceRangeFor(importance)
	o.applyPipelineLocked()
	refetch := o.state.DebouncedPrompt != ""
	o.mu.Unlock()

	if refetch {
		go o.Refresh(context.Background())
	}
}

// SetSortKey re-sorts the current batch. The page is left alone and
// clamped on read.
func (o *Orchestrator) SetSortKey(key SortKey) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.SortKey = key
	o.applyPipelineLocked()
}

// SetPage moves to the requested 1-based page, clamped into range.
func (o *Orchestrator) SetPage(page int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	total := TotalPages(len(o.state.Products), o.state.PageSize)
	o.state.Page = clampInt(page, 1, total)
}

// NextPage advances one page, clamped at the last page.
func (o *Orchestrator) NextPage() {
	o.mu.Lock()
	page := o.state.Page + 1
	o.mu.Unlock()
	o.SetPage(page)
}

// PrevPage steps back one page, clamped at page 1.
func (o *Orchestrator) PrevPage() {
	o.mu.Lock()
	page := o.state.Page - 1
	o.mu.Unlock()
	o.SetPage(page)
}

// Query commits a prompt directly, bypassing the debouncer, and runs a
// fetch synchronously. Used by one-shot surfaces such as the demo HTTP API.
func (o *Orchestrator) Query(ctx context.Context, prompt string, priceImportance int) {
	priceImportance = clampInt(priceImportance, 0, 100)

	o.mu.Lock()
	o.state.Prompt = prompt
	o.state.DebouncedPrompt = prompt
	o.state.PriceImportance = priceImportance
	o.state.PriceRange = PriceRangeFor(priceImportance)
	o.mu.Unlock()

	o.Refresh(ctx)
}

// Refresh runs one recommend request end-to-end against the current
// debounced prompt and price importance. Safe for concurrent use: only the
// most recently issued request may touch the state.
func (o *Orchestrator) Refresh(ctx context.Context) {
	o.mu.Lock()
	o.issuedSeq++
	seq := o.issuedSeq
	prompt := o.state.DebouncedPrompt
	importance := o.state.PriceImportance
	o.state.Loading = true
	o.state.Error = ""
	o.mu.Unlock()

	o.events.Log(eventlog.LevelInfo, "recommend request", map[string]any{
		"prompt":     prompt,
		"importance": importance,
	})
	o.log.Debug().Uint64("seq", seq).Str("prompt", prompt).Int("importance", importance).Msg("fetching recommendations")

	raw, err := o.client.Recommend(ctx, prompt, importance)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.issuedSeq {
		// Superseded while in flight. A newer request owns the state now,
		// including the loading flag.
		o.log.Debug().Uint64("seq", seq).Uint64("latest", o.issuedSeq).Msg("discarding stale recommend response")
		return
	}

	o.state.Loading = false

	if err != nil {
		o.state.Error = err.Error()
		o.batch = nil
		o.state.Products = nil
		o.state.Page = 1
		o.events.Log(eventlog.LevelError, "recommend failed", map[string]any{
			"prompt": prompt,
			"error":  err.Error(),
		})
		return
	}

	o.batch = NormalizeBatch(raw)
	o.applyPipelineLocked()
	o.state.Page = 1

	o.events.Log(eventlog.LevelInfo, "recommend ok", map[string]any{
		"prompt": prompt,
		"count":  len(o.state.Products),
	})
}

// applyPipelineLocked derives the visible product list from the normalized
// batch under the current window and sort key. Callers hold o.mu.
func (o *Orchestrator) applyPipelineLocked() {
	filtered := FilterByPrice(o.batch, o.state.PriceRange)
	o.state.Products = SortProducts(filtered, o.state.SortKey)
}

// State returns a snapshot of the query state with the page clamped.
func (o *Orchestrator) State() QueryState {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.state
	snap.Page = clampInt(snap.Page, 1, TotalPages(len(snap.Products), snap.PageSize))
	snap.Products = append([]Product(nil), o.state.Products...)
	return snap
}

// PageView returns the currently visible page along with the clamped page
// number and total page count. The returned slice is detached from the
// orchestrator's state, like State().
func (o *Orchestrator) PageView() ([]Product, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	products := append([]Product(nil), o.state.Products...)
	return Paginate(products, o.state.Page, o.state.PageSize)
}

// Close stops the debounce timer. In-flight fetches run to completion and
// are reconciled, or discarded, as usual.
func (o *Orchestrator) Close() {
	o.debouncer.Stop()
}
