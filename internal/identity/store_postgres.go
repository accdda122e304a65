package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
	txcontext "rollbook/pkg/platform/tx"
)

// PostgresStore persists identity records in the users table.
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

// ResolveOrCreate inserts the identity record if absent and returns its id.
// The ON CONFLICT no-op plus re-select makes concurrent first sightings of
// the same ref converge on a single row.
func (s *PostgresStore) ResolveOrCreate(ctx context.Context, ref string) (id.UserID, error) {
	q := s.querier(ctx)
	var userID id.UserID
	err := q.QueryRowContext(ctx,
		`INSERT INTO users (user_ref) VALUES ($1)
		 ON CONFLICT (user_ref) DO NOTHING
		 RETURNING user_id`, ref).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("create user %q: %w", ref, err)
	}
	// Conflict path: the row already existed.
	err = q.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE user_ref = $1`, ref).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("lookup user %q after conflict: %w", ref, err)
	}
	return userID, nil
}

func (s *PostgresStore) Lookup(ctx context.Context, ref string) (id.UserID, error) {
	var userID id.UserID
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE user_ref = $1`, ref).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup user %q: %w", ref, err)
	}
	return userID, nil
}

func (s *PostgresStore) Ref(ctx context.Context, userID id.UserID) (string, error) {
	var ref string
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT user_ref FROM users WHERE user_id = $1`, userID).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup user ref %d: %w", userID, err)
	}
	return ref, nil
}
