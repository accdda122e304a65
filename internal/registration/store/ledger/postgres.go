// Package ledger persists the durable registration and survey records. The
// uniqueness invariants live here: one registration per (user, campaign) and
// one survey submission per registration, both enforced by database unique
// constraints with the service-level pre-checks as best-effort validation.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rollbook/internal/platform/postgres"
	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
	txcontext "rollbook/pkg/platform/tx"
)

// Filter narrows registration listings. Nil fields match everything.
type Filter struct {
	UserID     *id.UserID
	CampaignID *id.CampaignID
}

// PostgresStore persists registrations, survey submissions, and survey
// details in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
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

// InsertRegistration persists one accepted registration and fills in its id.
// A unique violation on (user_id, campaign_id) returns sentinel.ErrConflict:
// the constraint is the enforcement backstop behind the service's duplicate
// pre-check.
func (s *PostgresStore) InsertRegistration(ctx context.Context, r *models.Registration) error {
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO registrations
			(campaign_id, user_id, school, grade_teaching, curriculum, phone, employee_id, session_range, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING registration_id`,
		r.CampaignID, r.UserID, r.School, r.GradeTeaching, r.Curriculum,
		r.Phone, r.EmployeeID, r.SessionRange, r.SessionID, r.CreatedAt).Scan(&r.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

const registrationColumns = `registration_id, campaign_id, user_id, school, grade_teaching, curriculum, phone, employee_id, session_range, session_id, created_at`

func scanRegistration(rows *sql.Rows) (models.Registration, error) {
	var r models.Registration
	err := rows.Scan(&r.ID, &r.CampaignID, &r.UserID, &r.School, &r.GradeTeaching,
		&r.Curriculum, &r.Phone, &r.EmployeeID, &r.SessionRange, &r.SessionID, &r.CreatedAt)
	return r, err
}

// ListRegistrations returns registrations matching the filter in insertion
// order.
func (s *PostgresStore) ListRegistrations(ctx context.Context, filter Filter) ([]models.Registration, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		conds = append(conds, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	query := `SELECT ` + registrationColumns + ` FROM registrations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY registration_id`

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		registrations = append(registrations, r)
	}
	return registrations, rows.Err()
}

// DeleteRegistration removes one registration; the survey submission and its
// details cascade at the schema level.
func (s *PostgresStore) DeleteRegistration(ctx context.Context, registrationID id.RegistrationID) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM registrations WHERE registration_id = $1`, registrationID)
	if err != nil {
		return fmt.Errorf("delete registration %d: %w", registrationID, err)
	}
	return nil
}

// InsertSubmission persists a survey envelope. A unique violation on
// registration_id returns sentinel.ErrConflict.
func (s *PostgresStore) InsertSubmission(ctx context.Context, sub *models.SurveySubmission) error {
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO survey_submissions (registration_id, user_id, survey_version, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING submission_id`,
		sub.RegistrationID, sub.UserID, sub.Version, sub.SessionID, sub.CreatedAt).Scan(&sub.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert survey submission: %w", err)
	}
	return nil
}

// InsertDetails persists the submission's key/value answers.
func (s *PostgresStore) InsertDetails(ctx context.Context, details []models.SurveyDetail) error {
	conn := s.conn(ctx)
	for _, d := range details {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO survey_details (submission_id, question_id, response) VALUES ($1, $2, $3)`,
			d.SubmissionID, d.QuestionID, string(d.Raw))
		if err != nil {
			return fmt.Errorf("insert survey detail %q: %w", d.QuestionID, err)
		}
	}
	return nil
}

// GetSubmissionForRegistration returns the registration's survey envelope or
// sentinel.ErrNotFound.
func (s *PostgresStore) GetSubmissionForRegistration(ctx context.Context, registrationID id.RegistrationID) (models.SurveySubmission, error) {
	var sub models.SurveySubmission
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT submission_id, registration_id, user_id, survey_version, session_id, created_at
		 FROM survey_submissions WHERE registration_id = $1`, registrationID).
		Scan(&sub.ID, &sub.RegistrationID, &sub.UserID, &sub.Version, &sub.SessionID, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SurveySubmission{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.SurveySubmission{}, fmt.Errorf("get submission for registration %d: %w", registrationID, err)
	}
	return sub, nil
}

// ListDetails returns a submission's answers in insertion order.
func (s *PostgresStore) ListDetails(ctx context.Context, submissionID id.SubmissionID) ([]models.SurveyDetail, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT detail_id, submission_id, question_id, response
		 FROM survey_details WHERE submission_id = $1 ORDER BY detail_id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list survey details: %w", err)
	}
	defer rows.Close()

	var details []models.SurveyDetail
	for rows.Next() {
		var (
			d   models.SurveyDetail
			raw string
		)
		if err := rows.Scan(&d.ID, &d.SubmissionID, &d.QuestionID, &raw); err != nil {
			return nil, fmt.Errorf("scan survey detail: %w", err)
		}
		d.Raw = []byte(raw)
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListQuestionIDs unions the question ids across every submission under the
// campaign, so reporting can present a stable column set.
func (s *PostgresStore) ListQuestionIDs(ctx context.Context, campaignID id.CampaignID) (map[string]struct{}, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT DISTINCT d.question_id
		 FROM survey_details d
		 JOIN survey_submissions sub ON sub.submission_id = d.submission_id
		 JOIN registrations r ON r.registration_id = sub.registration_id
		 WHERE r.campaign_id = $1`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	defer rows.Close()

	questions := make(map[string]struct{})
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		questions[q] = struct{}{}
	}
	return questions, rows.Err()
}
