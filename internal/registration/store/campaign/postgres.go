// Package campaign persists the registration campaign registry: the mapping
// from external campaign ids to internal numeric ids, created lazily on first
// reference.
package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
	txcontext "rollbook/pkg/platform/tx"
)

// PostgresStore persists campaigns in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// GetByRef looks up a campaign by its external id.
func (s *PostgresStore) GetByRef(ctx context.Context, ref id.CampaignRef) (models.Campaign, error) {
	var c models.Campaign
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT campaign_id, external_id, created_at FROM campaigns WHERE external_id = $1`,
		string(ref)).Scan(&c.ID, &c.ExternalID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Campaign{}, fmt.Errorf("get campaign %q: %w", ref, err)
	}
	return c, nil
}

// GetOrCreate returns the campaign for ref, creating it on first reference.
// The unique index on external_id guarantees concurrent creators converge on
// one row; the losing writer falls through to the lookup.
func (s *PostgresStore) GetOrCreate(ctx context.Context, ref id.CampaignRef) (models.Campaign, error) {
	q := s.querier(ctx)
	var c models.Campaign
	err := q.QueryRowContext(ctx,
		`INSERT INTO campaigns (external_id) VALUES ($1)
		 ON CONFLICT (external_id) DO NOTHING
		 RETURNING campaign_id, external_id, created_at`,
		string(ref)).Scan(&c.ID, &c.ExternalID, &c.CreatedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, fmt.Errorf("create campaign %q: %w", ref, err)
	}
	return s.GetByRef(ctx, ref)
}
