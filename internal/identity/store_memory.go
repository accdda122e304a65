package identity

import (
	"context"
	"sync"

	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// InMemoryStore is the test/dev identity resolver.
type InMemoryStore struct {
	mu     sync.Mutex
	byRef  map[string]id.UserID
	byID   map[id.UserID]string
	nextID id.UserID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byRef: make(map[string]id.UserID),
		byID:  make(map[id.UserID]string),
	}
}

func (s *InMemoryStore) ResolveOrCreate(_ context.Context, ref string) (id.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID, ok := s.byRef[ref]; ok {
		return userID, nil
	}
	s.nextID++
	s.byRef[ref] = s.nextID
	s.byID[s.nextID] = ref
	return s.nextID, nil
}

func (s *InMemoryStore) Lookup(_ context.Context, ref string) (id.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID, ok := s.byRef[ref]; ok {
		return userID, nil
	}
	return 0, sentinel.ErrNotFound
}

func (s *InMemoryStore) Ref(_ context.Context, userID id.UserID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.byID[userID]; ok {
		return ref, nil
	}
	return "", sentinel.ErrNotFound
}
