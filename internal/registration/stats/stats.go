// Package stats builds per-user reporting rows from stored registrations and
// survey submissions. Question columns are keyed by whitespace-normalized
// question ids so every user reports the same column set.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// RegistrationStats is the registration portion of a user's stats row.
type RegistrationStats struct {
	Phone         string `json:"phone"`
	School        string `json:"school"`
	GradeTeaching string `json:"grade_teaching"`
	Curriculum    string `json:"curriculum"`
	EmployeeID    string `json:"employee_id"`
	SessionRange  string `json:"session_range"`
}

// SurveyStats is the survey portion of a user's stats row. Answers is keyed
// by normalized question key; questions the user skipped are present with an
// empty value so the column set is stable across users.
type SurveyStats struct {
	Version string         `json:"survey_version"`
	Answers map[string]any `json:"answers"`
}

// Report is one user's combined stats row. Either part is nil when the
// underlying record does not exist.
type Report struct {
	Registration *RegistrationStats `json:"registration,omitempty"`
	Survey       *SurveyStats       `json:"survey,omitempty"`
}

// Registrations is the read-side facade the source lists registrations with.
type Registrations interface {
	ListRegistrations(ctx context.Context, filter service.ListFilter) ([]models.Registration, error)
}

// Ledger is the survey-side store surface the source reads from.
type Ledger interface {
	GetSubmissionForRegistration(ctx context.Context, registrationID id.RegistrationID) (models.SurveySubmission, error)
	ListDetails(ctx context.Context, submissionID id.SubmissionID) ([]models.SurveyDetail, error)
	ListQuestionIDs(ctx context.Context, campaignID id.CampaignID) (map[string]struct{}, error)
}

// Source builds stats reports for single users.
type Source struct {
	registrations Registrations
	ledger        Ledger
}

func NewSource(registrations Registrations, ledger Ledger) *Source {
	return &Source{registrations: registrations, ledger: ledger}
}

// Build assembles the stats row for one user, optionally scoped to a course.
// The user's first registration anchors the row; survey answers and the
// campaign's question set are fetched concurrently.
func (s *Source) Build(ctx context.Context, userRef, courseRef string) (Report, error) {
	regs, err := s.registrations.ListRegistrations(ctx, service.ListFilter{
		UserRef:   userRef,
		CourseRef: courseRef,
	})
	if err != nil {
		return Report{}, err
	}
	if len(regs) == 0 {
		return Report{}, nil
	}
	reg := regs[0]

	report := Report{
		Registration: &RegistrationStats{
			Phone:         reg.Phone,
			School:        reg.School,
			GradeTeaching: reg.GradeTeaching,
			Curriculum:    reg.Curriculum,
			EmployeeID:    reg.EmployeeID,
			SessionRange:  reg.SessionRange,
		},
	}

	var (
		details   []models.SurveyDetail
		sub       models.SurveySubmission
		questions map[string]struct{}
		hasSurvey bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sub, err = s.ledger.GetSubmissionForRegistration(gctx, reg.ID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		hasSurvey = true
		details, err = s.ledger.ListDetails(gctx, sub.ID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = s.ledger.ListQuestionIDs(gctx, reg.CampaignID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if !hasSurvey {
		return report, nil
	}

	answers := make(map[string]any, len(questions))
	for question := range questions {
		answers[questionKey(question)] = ""
	}
	for _, detail := range details {
		value, err := detail.Response()
		if err != nil {
			return Report{}, err
		}
		answers[questionKey(detail.QuestionID)] = readable(value)
	}

	report.Survey = &SurveyStats{Version: sub.Version, Answers: answers}
	return report, nil
}

// questionKey collapses all whitespace in a question id to single
// underscores, e.g. "q  one" becomes "q_one".
func questionKey(questionID string) string {
	return strings.Join(strings.Fields(questionID), "_")
}

// readable flattens list answers into one comma-separated cell. Scalar and
// mapping answers pass through untouched.
func readable(value any) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, ", ")
}
