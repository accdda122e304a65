package service

import (
	"context"
	"errors"
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

// Register validates and stores one user's registration for a campaign.
//
// The duplicate pre-check, validation, and insert run in a single
// transaction; the unique constraint on (user, campaign) is the enforcement
// backstop if a concurrent writer slips past the pre-check. Curriculum is
// taken from the matching rule, never from caller input.
func (s *Service) Register(ctx context.Context, userRef string, timestamp time.Time, sessionID string, campaignRef id.CampaignRef, payload models.RegistrationPayload) (models.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Register")
	defer span.End()

	timestamp = timestamp.UTC().Truncate(time.Second)

	var reg models.Registration
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkNotRegistered(ctx, userRef, campaignRef); err != nil {
			return err
		}

		campaign, err := s.campaigns.GetOrCreate(ctx, campaignRef)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
		}

		curriculum, err := s.validate(ctx, campaign.ID, campaignRef, payload.School, payload.GradeTeaching, payload.CourseID)
		if err != nil {
			return err
		}

		userID, err := s.identities.ResolveOrCreate(ctx, userRef)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user identity")
		}

		reg = models.Registration{
			CampaignID:    campaign.ID,
			UserID:        userID,
			School:        payload.School,
			GradeTeaching: payload.GradeTeaching,
			Curriculum:    curriculum,
			Phone:         payload.Phone,
			EmployeeID:    payload.EmployeeID,
			SessionRange:  payload.SessionRange,
			SessionID:     sessionID,
			CreatedAt:     timestamp,
		}
		if err := s.ledger.InsertRegistration(ctx, &reg); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeDuplicateRegistration, "user already registered for this campaign")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store registration")
		}

		return s.feed.Emit(ctx, changefeed.Event{
			ID:             uuid.New(),
			Type:           changefeed.EventRegistrationCreated,
			Timestamp:      timestamp,
			CampaignRef:    campaignRef,
			UserRef:        userRef,
			RegistrationID: reg.ID,
			RequestID:      requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		s.countRegistrationRejection(err)
		return models.Registration{}, err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsAccepted.Inc()
	}
	return reg, nil
}

// checkNotRegistered is the best-effort duplicate pre-validation. An unknown
// user or campaign cannot have a prior registration.
func (s *Service) checkNotRegistered(ctx context.Context, userRef string, campaignRef id.CampaignRef) error {
	userID, err := s.identities.Lookup(ctx, userRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user identity")
	}

	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up campaign")
	}

	existing, err := s.ledger.ListRegistrations(ctx, ledger.Filter{UserID: &userID, CampaignID: &campaign.ID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check prior registrations")
	}
	if len(existing) > 0 {
		return dErrors.New(dErrors.CodeDuplicateRegistration, "user already registered for this campaign")
	}
	return nil
}

func (s *Service) countRegistrationRejection(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeDuplicateRegistration):
		s.metrics.IncRejected("duplicate")
	case dErrors.HasCode(err, dErrors.CodeInvalidCourseMapping):
		s.metrics.IncRejected("invalid_course_mapping")
	default:
		s.metrics.IncRejected("internal")
	}
}
