package eventstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Well-known event types emitted by the delivery pipeline.
const (
	TypeDeliveryStart    = "delivery_start"
	TypeDeliveryComplete = "delivery_complete"
	TypeFetchComplete    = "fetch_complete"
	TypeAnalysisStart    = "analysis_start"
	TypeAnalysisComplete = "analysis_complete"
	TypeEmailSendRetry   = "email_send_retry"
	TypeEmailSendFailed  = "email_send_failed"
	TypeEmailSendDone    = "email_send_complete"
	TypeError            = "error"
)

// Event is one observability record, grouped with its siblings by TraceID.
type Event struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	TraceID    string                 `json:"trace_id"`
	Type       string                 `json:"event_type"`
	Component  string                 `json:"component"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	DurationMS float64                `json:"duration_ms,omitempty"`
}

// Store is a bounded in-memory event list. Oldest events are dropped once
// MaxSize is reached; PurgeOlderThan removes aged entries.
type Store struct {
	mu      sync.RWMutex
	events  []Event
	maxSize int
	maxAge  time.Duration
	now     func() time.Time
}

func New(maxSize int, maxAge time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Store{
		events:  make([]Event, 0, 256),
		maxSize: maxSize,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Add records an event and returns it.
func (s *Store) Add(traceID, eventType, component, message string, ctx map[string]interface{}, durationMS float64) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := Event{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC(),
		TraceID:    traceID,
		Type:       eventType,
		Component:  component,
		Message:    message,
		Context:    ctx,
		DurationMS: durationMS,
	}

	s.events = append(s.events, event)
	if len(s.events) > s.maxSize {
		s.events = s.events[len(s.events)-s.maxSize:]
	}
	return event
}

// Recent returns up to limit most recent events, oldest first.
func (s *Store) Recent(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, limit)
	copy(out, s.events[len(s.events)-limit:])
	return out
}

// ByTrace returns all events for one trace ID in chronological order.
func (s *Store) ByTrace(traceID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.TraceID == traceID {
			out = append(out, e)
		}
	}
	return out
}

// ByType returns up to limit most recent events of the given type.
func (s *Store) ByType(eventType string, limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Event
	for _, e := range s.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// All returns a copy of every stored event.
func (s *Store) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// PurgeOlderThan drops events older than maxAge (store default when zero)
// and returns the number removed.
func (s *Store) PurgeOlderThan(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = s.maxAge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-maxAge)
	kept := s.events[:0]
	for _, e := range s.events {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(s.events) - len(kept)
	s.events = kept
	return removed
}
