// Package postgres implements the changefeed outbox on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rollbook/pkg/platform/changefeed"
	txcontext "rollbook/pkg/platform/tx"
)

// Store writes events to the changefeed_outbox table. Appends join any
// transaction carried in ctx so the outbox row commits with the state change
// that produced it.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed outbox store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes one event to the outbox for later relay.
func (s *Store) Append(ctx context.Context, event changefeed.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal changefeed event: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx,
		`INSERT INTO changefeed_outbox (event_id, payload, created_at) VALUES ($1, $2, $3)`,
		event.ID, payload, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append changefeed event: %w", err)
	}
	return nil
}

// ListUnpublished returns up to limit pending events in creation order.
func (s *Store) ListUnpublished(ctx context.Context, limit int) ([]changefeed.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM changefeed_outbox
		 WHERE published_at IS NULL
		 ORDER BY created_at
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished events: %w", err)
	}
	defer rows.Close()

	var events []changefeed.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		var event changefeed.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// MarkPublished stamps the given events as relayed.
func (s *Store) MarkPublished(ctx context.Context, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	ids := make([]string, len(eventIDs))
	for i, eid := range eventIDs {
		ids[i] = eid.String()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE changefeed_outbox SET published_at = now()
		 WHERE event_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark events published: %w", err)
	}
	return nil
}
