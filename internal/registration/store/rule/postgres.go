// Package rule persists enrollment rules and session ranges. Both are
// declarative data bulk-replaced by campaign administrators; rollbook applies
// no field validation on write.
package rule

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

// PostgresStore persists rules and session ranges in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	// globalTruncate widens bulk-replace truncation from the campaign to
	// every campaign. Single-campaign deployments set this explicitly.
	globalTruncate bool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithGlobalTruncate makes ReplaceRules/ReplaceSessions truncate across all
// campaigns instead of just the target campaign.
func WithGlobalTruncate() PostgresOption {
	return func(s *PostgresStore) { s.globalTruncate = true }
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// ReplaceRules deletes existing rules (when truncate) and inserts the given
// specs verbatim. Returns the truncated row count.
func (s *PostgresStore) ReplaceRules(ctx context.Context, campaignID id.CampaignID, specs []models.RuleSpec, truncate bool) (int64, error) {
	conn := s.conn(ctx)
	var deleted int64
	if truncate {
		var err error
		deleted, err = s.truncateTable(ctx, conn, "enrollment_rules", campaignID)
		if err != nil {
			return 0, err
		}
	}
	for _, spec := range specs {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO enrollment_rules (campaign_id, school, grade_teaching, curriculum, course_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			campaignID, spec.School, spec.GradeTeaching, spec.Curriculum, string(spec.CourseID))
		if err != nil {
			return 0, fmt.Errorf("insert enrollment rule: %w", err)
		}
	}
	return deleted, nil
}

// ReplaceSessions is the session-range counterpart of ReplaceRules.
// Independent of rule truncation.
func (s *PostgresStore) ReplaceSessions(ctx context.Context, campaignID id.CampaignID, specs []models.SessionSpec, truncate bool) (int64, error) {
	conn := s.conn(ctx)
	var deleted int64
	if truncate {
		var err error
		deleted, err = s.truncateTable(ctx, conn, "session_ranges", campaignID)
		if err != nil {
			return 0, err
		}
	}
	for _, spec := range specs {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO session_ranges (campaign_id, label, curriculum, course_id)
			 VALUES ($1, $2, $3, $4)`,
			campaignID, spec.Label, spec.Curriculum, string(spec.CourseID))
		if err != nil {
			return 0, fmt.Errorf("insert session range: %w", err)
		}
	}
	return deleted, nil
}

func (s *PostgresStore) truncateTable(ctx context.Context, conn dbConn, table string, campaignID id.CampaignID) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if s.globalTruncate {
		res, err = conn.ExecContext(ctx, `DELETE FROM `+table)
	} else {
		res, err = conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE campaign_id = $1`, campaignID)
	}
	if err != nil {
		return 0, fmt.Errorf("truncate %s: %w", table, err)
	}
	return res.RowsAffected()
}

// ListRules returns the campaign's rules in insertion order.
func (s *PostgresStore) ListRules(ctx context.Context, campaignID id.CampaignID) ([]models.EnrollmentRule, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT rule_id, campaign_id, school, grade_teaching, curriculum, course_id
		 FROM enrollment_rules WHERE campaign_id = $1 ORDER BY rule_id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.EnrollmentRule
	for rows.Next() {
		var r models.EnrollmentRule
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.School, &r.GradeTeaching, &r.Curriculum, &r.CourseID); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// ListSessions returns the campaign's session ranges in insertion order.
func (s *PostgresStore) ListSessions(ctx context.Context, campaignID id.CampaignID) ([]models.SessionRange, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT session_range_id, campaign_id, label, curriculum, course_id
		 FROM session_ranges WHERE campaign_id = $1 ORDER BY session_range_id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionRange
	for rows.Next() {
		var sr models.SessionRange
		if err := rows.Scan(&sr.ID, &sr.CampaignID, &sr.Label, &sr.Curriculum, &sr.CourseID); err != nil {
			return nil, fmt.Errorf("scan session range: %w", err)
		}
		sessions = append(sessions, sr)
	}
	return sessions, rows.Err()
}

// FindMatch returns the rule matching the exact (school, grade, course) key,
// or sentinel.ErrNotFound.
func (s *PostgresStore) FindMatch(ctx context.Context, campaignID id.CampaignID, school, gradeTeaching string, courseID id.CourseID) (models.EnrollmentRule, error) {
	var r models.EnrollmentRule
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT rule_id, campaign_id, school, grade_teaching, curriculum, course_id
		 FROM enrollment_rules
		 WHERE campaign_id = $1 AND school = $2 AND grade_teaching = $3 AND course_id = $4
		 ORDER BY rule_id LIMIT 1`,
		campaignID, school, gradeTeaching, string(courseID)).
		Scan(&r.ID, &r.CampaignID, &r.School, &r.GradeTeaching, &r.Curriculum, &r.CourseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EnrollmentRule{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.EnrollmentRule{}, fmt.Errorf("find rule match: %w", err)
	}
	return r, nil
}

// FindByCurriculum returns every rule matching on curriculum rather than
// course id. Used by the reverse course lookup.
func (s *PostgresStore) FindByCurriculum(ctx context.Context, campaignID id.CampaignID, school, gradeTeaching, curriculum string) ([]models.EnrollmentRule, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT rule_id, campaign_id, school, grade_teaching, curriculum, course_id
		 FROM enrollment_rules
		 WHERE campaign_id = $1 AND school = $2 AND grade_teaching = $3 AND curriculum = $4
		 ORDER BY rule_id`,
		campaignID, school, gradeTeaching, curriculum)
	if err != nil {
		return nil, fmt.Errorf("find rules by curriculum: %w", err)
	}
	defer rows.Close()

	var rules []models.EnrollmentRule
	for rows.Next() {
		var r models.EnrollmentRule
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.School, &r.GradeTeaching, &r.Curriculum, &r.CourseID); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
