package service

import (
	"context"

	"github.com/google/uuid"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/changefeed"
	"rollbook/pkg/requestcontext"
)

// DeleteRegistrations purges a user's registrations under a campaign,
// cascading to their survey submission and details. Each purged row is
// returned with the course id reverse-resolved from the current rules so
// callers can notify dependent systems. Intended for administrative use.
func (s *Service) DeleteRegistrations(ctx context.Context, userRef string, campaignRef id.CampaignRef) ([]models.DeletedRegistration, error) {
	ctx, span := tracer.Start(ctx, "registration.DeleteRegistrations")
	defer span.End()

	var deleted []models.DeletedRegistration
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		regs, err := s.ListRegistrations(ctx, ListFilter{UserRef: userRef, CampaignRef: campaignRef})
		if err != nil {
			return err
		}
		for _, reg := range regs {
			s.logger.InfoContext(ctx, "deleting registration",
				"user", userRef,
				"campaign", campaignRef,
				"registration_id", reg.ID,
			)
			courseID, err := s.resolveCourse(ctx, reg)
			if err != nil {
				return err
			}
			if err := s.ledger.DeleteRegistration(ctx, reg.ID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete registration")
			}
			if err := s.feed.Emit(ctx, changefeed.Event{
				ID:             uuid.New(),
				Type:           changefeed.EventRegistrationPurged,
				Timestamp:      requestcontext.Now(ctx),
				CampaignRef:    campaignRef,
				UserRef:        userRef,
				RegistrationID: reg.ID,
				CourseID:       courseID,
				RequestID:      requestcontext.RequestID(ctx),
			}); err != nil {
				return err
			}
			deleted = append(deleted, models.DeletedRegistration{Registration: reg, CourseID: courseID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RegistrationsPurged.Add(float64(len(deleted)))
	}
	return deleted, nil
}
