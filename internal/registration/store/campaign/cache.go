package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	txcontext "rollbook/pkg/platform/tx"
)

// Store is the campaign registry surface the cache decorates.
type Store interface {
	GetByRef(ctx context.Context, ref id.CampaignRef) (models.Campaign, error)
	GetOrCreate(ctx context.Context, ref id.CampaignRef) (models.Campaign, error)
}

// CachedStore fronts a campaign store with a Redis read-through cache.
// Campaign rows are immutable after creation, so entries only ever age out.
// Cache failures degrade to the inner store; they are never surfaced.
type CachedStore struct {
	inner Store
	redis *redis.Client
	ttl   time.Duration
}

func NewCached(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, redis: client, ttl: ttl}
}

func cacheKey(ref id.CampaignRef) string {
	return fmt.Sprintf("rollbook:campaign:%s", ref)
}

func (s *CachedStore) GetByRef(ctx context.Context, ref id.CampaignRef) (models.Campaign, error) {
	// Inside a transaction, read the source of truth: the cache cannot see
	// uncommitted rows.
	if _, inTx := txcontext.From(ctx); !inTx {
		if c, ok := s.fromCache(ctx, ref); ok {
			return c, nil
		}
	}
	c, err := s.inner.GetByRef(ctx, ref)
	if err != nil {
		return models.Campaign{}, err
	}
	s.toCache(ctx, c)
	return c, nil
}

func (s *CachedStore) GetOrCreate(ctx context.Context, ref id.CampaignRef) (models.Campaign, error) {
	c, err := s.inner.GetOrCreate(ctx, ref)
	if err != nil {
		return models.Campaign{}, err
	}
	if _, inTx := txcontext.From(ctx); !inTx {
		s.toCache(ctx, c)
	}
	return c, nil
}

func (s *CachedStore) fromCache(ctx context.Context, ref id.CampaignRef) (models.Campaign, bool) {
	raw, err := s.redis.Get(ctx, cacheKey(ref)).Bytes()
	if err != nil {
		return models.Campaign{}, false
	}
	var c models.Campaign
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Campaign{}, false
	}
	return c, true
}

func (s *CachedStore) toCache(ctx context.Context, c models.Campaign) {
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(c.ExternalID), raw, s.ttl).Err(); err != nil && !errors.Is(err, context.Canceled) {
		// Best effort; the next read falls through to the store.
		return
	}
}
