package campaign

import (
	"context"
	"sync"
	"time"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// InMemoryStore is the test/dev campaign registry.
type InMemoryStore struct {
	mu     sync.Mutex
	byRef  map[id.CampaignRef]models.Campaign
	nextID id.CampaignID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byRef: make(map[id.CampaignRef]models.Campaign)}
}

func (s *InMemoryStore) GetByRef(_ context.Context, ref id.CampaignRef) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byRef[ref]; ok {
		return c, nil
	}
	return models.Campaign{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) GetOrCreate(_ context.Context, ref id.CampaignRef) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byRef[ref]; ok {
		return c, nil
	}
	s.nextID++
	c := models.Campaign{ID: s.nextID, ExternalID: ref, CreatedAt: time.Now()}
	s.byRef[ref] = c
	return c, nil
}
