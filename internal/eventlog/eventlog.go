// Package eventlog provides the best-effort logging side-channel: events go
// to local diagnostics unconditionally and to the backend log endpoint on a
// fire-and-forget basis. Delivery failures never affect application state.
package eventlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
)

// Level is the severity of a side-channel event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger is the side-channel capability handed to the orchestrator layer.
// Implementations must never block the caller on delivery and must never
// surface delivery failures.
type Logger interface {
	Log(level Level, message string, meta map[string]any)
}

// Sender ships a log entry to the backend.
type Sender interface {
	Log(ctx context.Context, entry backend.LogEntry) error
}

// SideChannel emits events to local diagnostics first, then to the backend
// asynchronously.
type SideChannel struct {
	sender  Sender
	local   *observability.Logger
	timeout time.Duration
}

// NewSideChannel creates a side-channel. The sender may be nil to keep
// events local-only.
func NewSideChannel(sender Sender, local *observability.Logger, timeout time.Duration) *SideChannel {
	if local == nil {
		local = observability.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SideChannel{sender: sender, local: local, timeout: timeout}
}

// Log emits one event. Local diagnostics happen before the send is even
// attempted; the backend delivery runs on its own goroutine and its outcome
// is swallowed.
func (s *SideChannel) Log(level Level, message string, meta map[string]any) {
	evt := s.localEvent(level)
	if meta != nil {
		evt = evt.Interface("meta", meta)
	}
	evt.Msg(message)

	if s.sender == nil {
		return
	}

	entry := backend.LogEntry{
		Level:   string(level),
		Message: message,
		Meta:    withEventID(meta),
		TS:      time.Now().UTC().Format(time.RFC3339),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.sender.Log(ctx, entry)
	}()
}

func (s *SideChannel) localEvent(level Level) *observability.LogEvent {
	switch level {
	case LevelError:
		return s.local.Error()
	case LevelWarn:
		return s.local.Warn()
	default:
		return s.local.Info()
	}
}

// withEventID copies the meta map and stamps a correlation ID onto it. The
// caller's map is never mutated.
func withEventID(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["event_id"] = uuid.NewString()
	return out
}

// Nop is a Logger that discards everything.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(Level, string, map[string]any) {}

// Event is one recorded side-channel event.
type Event struct {
	Level   Level
	Message string
	Meta    map[string]any
}

// Recorder is a Logger that captures events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Log implements Logger.
func (r *Recorder) Log(level Level, message string, meta map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Message: message, Meta: meta})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
