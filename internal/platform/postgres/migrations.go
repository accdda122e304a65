package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one append-only step in the schema history. Steps are never
// edited after release; schema changes land as new versions.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS campaigns (
				campaign_id BIGSERIAL PRIMARY KEY,
				external_id TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS campaigns_external_id_key
				ON campaigns (external_id)`,
			`CREATE TABLE IF NOT EXISTS users (
				user_id    BIGSERIAL PRIMARY KEY,
				user_ref   TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS users_user_ref_key
				ON users (user_ref)`,
			`CREATE TABLE IF NOT EXISTS enrollment_rules (
				rule_id        BIGSERIAL PRIMARY KEY,
				campaign_id    BIGINT NOT NULL REFERENCES campaigns (campaign_id) ON DELETE CASCADE,
				school         TEXT NOT NULL,
				grade_teaching TEXT NOT NULL,
				curriculum     TEXT NOT NULL,
				course_id      TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS enrollment_rules_match_idx
				ON enrollment_rules (campaign_id, school, grade_teaching, course_id)`,
			`CREATE TABLE IF NOT EXISTS session_ranges (
				session_range_id BIGSERIAL PRIMARY KEY,
				campaign_id      BIGINT NOT NULL REFERENCES campaigns (campaign_id) ON DELETE CASCADE,
				label            TEXT NOT NULL,
				curriculum       TEXT NOT NULL,
				course_id        TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS registrations (
				registration_id BIGSERIAL PRIMARY KEY,
				campaign_id     BIGINT NOT NULL REFERENCES campaigns (campaign_id),
				user_id         BIGINT NOT NULL REFERENCES users (user_id),
				school          TEXT,
				grade_teaching  TEXT,
				curriculum      TEXT NOT NULL,
				phone           TEXT,
				employee_id     TEXT,
				session_range   TEXT NOT NULL,
				session_id      TEXT,
				created_at      TIMESTAMPTZ NOT NULL,
				CONSTRAINT registrations_user_campaign_key UNIQUE (user_id, campaign_id)
			)`,
			`CREATE TABLE IF NOT EXISTS survey_submissions (
				submission_id   BIGSERIAL PRIMARY KEY,
				registration_id BIGINT NOT NULL REFERENCES registrations (registration_id) ON DELETE CASCADE,
				user_id         BIGINT NOT NULL REFERENCES users (user_id),
				survey_version  TEXT,
				session_id      TEXT,
				created_at      TIMESTAMPTZ NOT NULL,
				CONSTRAINT survey_submissions_registration_key UNIQUE (registration_id)
			)`,
			`CREATE TABLE IF NOT EXISTS survey_details (
				detail_id     BIGSERIAL PRIMARY KEY,
				submission_id BIGINT NOT NULL REFERENCES survey_submissions (submission_id) ON DELETE CASCADE,
				question_id   TEXT NOT NULL,
				response      TEXT
			)`,
		},
	},
	{
		version: 2,
		name:    "changefeed outbox",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS changefeed_outbox (
				event_id     UUID PRIMARY KEY,
				payload      JSONB NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				published_at TIMESTAMPTZ
			)`,
			`CREATE INDEX IF NOT EXISTS changefeed_outbox_unpublished_idx
				ON changefeed_outbox (created_at) WHERE published_at IS NULL`,
		},
	},
	{
		version: 3,
		name:    "reverse course lookup index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS enrollment_rules_curriculum_idx
				ON enrollment_rules (campaign_id, school, grade_teaching, curriculum)`,
		},
	},
}

// Migrate applies any unapplied migration steps in order. Each step runs in
// its own transaction and is recorded in schema_migrations.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`,
			m.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if exists {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		log.InfoContext(ctx, "applied migration", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
		m.version, m.name); err != nil {
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	return tx.Commit()
}
