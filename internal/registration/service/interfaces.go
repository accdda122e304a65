package service

import (
	"context"

	"rollbook/internal/registration/models"
	"rollbook/internal/registration/store/ledger"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/changefeed"
)

// CampaignStore is the campaign registry surface the service depends on.
type CampaignStore interface {
	GetByRef(ctx context.Context, ref id.CampaignRef) (models.Campaign, error)
	GetOrCreate(ctx context.Context, ref id.CampaignRef) (models.Campaign, error)
}

// RuleStore holds enrollment rules and session ranges.
type RuleStore interface {
	ReplaceRules(ctx context.Context, campaignID id.CampaignID, specs []models.RuleSpec, truncate bool) (int64, error)
	ReplaceSessions(ctx context.Context, campaignID id.CampaignID, specs []models.SessionSpec, truncate bool) (int64, error)
	ListRules(ctx context.Context, campaignID id.CampaignID) ([]models.EnrollmentRule, error)
	ListSessions(ctx context.Context, campaignID id.CampaignID) ([]models.SessionRange, error)
	FindMatch(ctx context.Context, campaignID id.CampaignID, school, gradeTeaching string, courseID id.CourseID) (models.EnrollmentRule, error)
	FindByCurriculum(ctx context.Context, campaignID id.CampaignID, school, gradeTeaching, curriculum string) ([]models.EnrollmentRule, error)
}

// LedgerStore holds registrations, survey submissions, and survey details.
type LedgerStore interface {
	InsertRegistration(ctx context.Context, r *models.Registration) error
	ListRegistrations(ctx context.Context, filter ledger.Filter) ([]models.Registration, error)
	DeleteRegistration(ctx context.Context, registrationID id.RegistrationID) error
	InsertSubmission(ctx context.Context, sub *models.SurveySubmission) error
	InsertDetails(ctx context.Context, details []models.SurveyDetail) error
	GetSubmissionForRegistration(ctx context.Context, registrationID id.RegistrationID) (models.SurveySubmission, error)
	ListDetails(ctx context.Context, submissionID id.SubmissionID) ([]models.SurveyDetail, error)
	ListQuestionIDs(ctx context.Context, campaignID id.CampaignID) (map[string]struct{}, error)
}

// FeedPublisher receives lifecycle events. Emissions happen inside the
// operation's transaction, so the publisher must write through synchronously.
type FeedPublisher interface {
	Emit(ctx context.Context, event changefeed.Event) error
}

// TxRunner provides the transactional boundary for check-then-insert
// sequences. Implementations wrap a database transaction or, in-memory, run
// the function directly and lean on the store's own locking.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
