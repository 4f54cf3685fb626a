package audit

import (
	"context"
	"sync"
)

const defaultMemoryCapacity = 1000

// InMemoryStore keeps the most recent events in a fixed-size ring. Once full,
// each append overwrites the oldest event.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

type MemoryOption func(*InMemoryStore)

// WithCapacity bounds how many events are retained.
func WithCapacity(n int) MemoryOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.events = make([]Event, n)
		}
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{events: make([]Event, defaultMemoryCapacity)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = event
	s.next++
	if s.next == len(s.events) {
		s.next = 0
		s.full = true
	}
	return nil
}

// ListByItem returns the retained events for itemID, oldest first.
func (s *InMemoryStore) ListByItem(_ context.Context, itemID int64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.ordered() {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every retained event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordered(), nil
}

func (s *InMemoryStore) ordered() []Event {
	if !s.full {
		return append([]Event{}, s.events[:s.next]...)
	}
	out := make([]Event, 0, len(s.events))
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}
