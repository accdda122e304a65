// Package memory implements the changefeed outbox in process memory for unit
// tests and Kafka-less deployments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"rollbook/pkg/platform/changefeed"
)

type entry struct {
	event     changefeed.Event
	published bool
}

// Store is an in-memory changefeed outbox.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event changefeed.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.entries = append(s.entries, entry{event: event})
	return nil
}

func (s *Store) ListUnpublished(_ context.Context, limit int) ([]changefeed.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []changefeed.Event
	for _, e := range s.entries {
		if e.published {
			continue
		}
		events = append(events, e.event)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (s *Store) MarkPublished(_ context.Context, eventIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := make(map[uuid.UUID]bool, len(eventIDs))
	for _, eid := range eventIDs {
		marked[eid] = true
	}
	for i := range s.entries {
		if marked[s.entries[i].event.ID] {
			s.entries[i].published = true
		}
	}
	return nil
}

// All returns every appended event, published or not. Test helper.
func (s *Store) All() []changefeed.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]changefeed.Event, len(s.entries))
	for i, e := range s.entries {
		events[i] = e.event
	}
	return events
}
