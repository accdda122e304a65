package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"rollbook/internal/registration/models"
	"rollbook/internal/registration/store/ledger"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/changefeed"
	"rollbook/pkg/platform/sentinel"
	"rollbook/pkg/requestcontext"
)

// Survey bundles a submission envelope with its decoded answers.
type Survey struct {
	Submission models.SurveySubmission
	Answers    map[string]any
}

// SubmitSurvey stores the one-per-registration survey for a user's campaign
// registration. Each answer is serialized independently so a single
// unencodable value fails the whole call before anything is written.
func (s *Service) SubmitSurvey(ctx context.Context, userRef string, timestamp time.Time, sessionID string, campaignRef id.CampaignRef, version string, answers map[string]any) (models.SurveySubmission, error) {
	ctx, span := tracer.Start(ctx, "registration.SubmitSurvey")
	defer span.End()

	timestamp = timestamp.UTC().Truncate(time.Second)

	var sub models.SurveySubmission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.registrationFor(ctx, userRef, campaignRef)
		if err != nil {
			return err
		}

		_, err = s.ledger.GetSubmissionForRegistration(ctx, reg.ID)
		if err == nil {
			return dErrors.New(dErrors.CodeDuplicateSurvey, "survey already submitted for this registration")
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check prior submission")
		}

		details := make([]models.SurveyDetail, 0, len(answers))
		for question, value := range answers {
			raw, err := models.EncodeResponse(value)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInvalidInput, "unserializable survey answer")
			}
			details = append(details, models.SurveyDetail{QuestionID: question, Raw: raw})
		}
		sort.Slice(details, func(i, j int) bool { return details[i].QuestionID < details[j].QuestionID })

		sub = models.SurveySubmission{
			RegistrationID: reg.ID,
			UserID:         reg.UserID,
			Version:        version,
			SessionID:      sessionID,
			CreatedAt:      timestamp,
		}
		if err := s.ledger.InsertSubmission(ctx, &sub); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeDuplicateSurvey, "survey already submitted for this registration")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store survey submission")
		}
		for i := range details {
			details[i].SubmissionID = sub.ID
		}
		if err := s.ledger.InsertDetails(ctx, details); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store survey answers")
		}

		return s.feed.Emit(ctx, changefeed.Event{
			ID:             uuid.New(),
			Type:           changefeed.EventSurveySubmitted,
			Timestamp:      timestamp,
			CampaignRef:    campaignRef,
			UserRef:        userRef,
			RegistrationID: reg.ID,
			RequestID:      requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		s.countSurveyRejection(err)
		return models.SurveySubmission{}, err
	}

	if s.metrics != nil {
		s.metrics.SurveysSubmitted.Inc()
	}
	return sub, nil
}

// GetSurvey returns the user's survey for a campaign with decoded answers.
func (s *Service) GetSurvey(ctx context.Context, userRef string, campaignRef id.CampaignRef) (Survey, error) {
	reg, err := s.registrationFor(ctx, userRef, campaignRef)
	if err != nil {
		return Survey{}, err
	}
	sub, err := s.ledger.GetSubmissionForRegistration(ctx, reg.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Survey{}, dErrors.New(dErrors.CodeNotFound, "no survey submitted for this registration")
	}
	if err != nil {
		return Survey{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load survey submission")
	}
	details, err := s.ledger.ListDetails(ctx, sub.ID)
	if err != nil {
		return Survey{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load survey answers")
	}
	answers := make(map[string]any, len(details))
	for _, d := range details {
		value, err := d.Response()
		if err != nil {
			return Survey{}, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt survey answer")
		}
		answers[d.QuestionID] = value
	}
	return Survey{Submission: sub, Answers: answers}, nil
}

// ListSurveyQuestionIDs returns the union of question ids seen across all
// surveys submitted under the campaign. Unknown campaign yields an empty set.
func (s *Service) ListSurveyQuestionIDs(ctx context.Context, campaignRef id.CampaignRef) (map[string]struct{}, error) {
	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
	}
	questions, err := s.ledger.ListQuestionIDs(ctx, campaign.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list survey questions")
	}
	return questions, nil
}

// registrationFor resolves the user's registration under a campaign, mapping
// every missing link to the same precondition failure.
func (s *Service) registrationFor(ctx context.Context, userRef string, campaignRef id.CampaignRef) (models.Registration, error) {
	noRegistration := func() error {
		return dErrors.New(dErrors.CodeNoRegistration, "user has no registration for this campaign")
	}

	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Registration{}, noRegistration()
	}
	if err != nil {
		return models.Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
	}

	userID, err := s.identities.Lookup(ctx, userRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Registration{}, noRegistration()
	}
	if err != nil {
		return models.Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user identity")
	}

	regs, err := s.ledger.ListRegistrations(ctx, ledger.Filter{UserID: &userID, CampaignID: &campaign.ID})
	if err != nil {
		return models.Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if len(regs) == 0 {
		return models.Registration{}, noRegistration()
	}
	return regs[0], nil
}

func (s *Service) countSurveyRejection(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeDuplicateSurvey):
		s.metrics.IncSurveyRejected("duplicate")
	case dErrors.HasCode(err, dErrors.CodeNoRegistration):
		s.metrics.IncSurveyRejected("no_registration")
	default:
		s.metrics.IncSurveyRejected("internal")
	}
}
