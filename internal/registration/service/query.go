package service

import (
	"context"
	"errors"

	"rollbook/internal/registration/models"
	"rollbook/internal/registration/store/ledger"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/sentinel"
)

// ListFilter narrows ListRegistrations. Empty fields are ignored. CourseRef
// is an external course reference resolved through the catalog before
// matching.
type ListFilter struct {
	UserRef     string
	CampaignRef id.CampaignRef
	CourseRef   string
}

// ListRegistrations returns registrations matching the filter. An unknown
// user or campaign yields an empty result rather than an error. The course
// filter re-runs rule matching per registration and drops rows whose stored
// triple no longer maps to the requested course.
func (s *Service) ListRegistrations(ctx context.Context, filter ListFilter) ([]models.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.ListRegistrations")
	defer span.End()

	var storeFilter ledger.Filter

	if filter.UserRef != "" {
		userID, err := s.identities.Lookup(ctx, filter.UserRef)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user identity")
		}
		storeFilter.UserID = &userID
	}

	if filter.CampaignRef != "" {
		campaign, err := s.campaigns.GetByRef(ctx, filter.CampaignRef)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
		}
		storeFilter.CampaignID = &campaign.ID
	}

	regs, err := s.ledger.ListRegistrations(ctx, storeFilter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	if filter.CourseRef == "" {
		return regs, nil
	}

	entry, err := s.courses.Resolve(ctx, filter.CourseRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve course")
	}

	kept := regs[:0]
	for _, reg := range regs {
		_, err := s.rules.FindMatch(ctx, reg.CampaignID, reg.School, reg.GradeTeaching, entry.ID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to match enrollment rules")
		}
		kept = append(kept, reg)
	}
	return kept, nil
}

// resolveCourse reverse-maps a stored registration back to a course id by
// matching rules on (campaign, school, grade, curriculum). Zero matches means
// the rules moved on since the registration was taken; more than one distinct
// course id is unresolvable and logged. Both cases return an empty id.
func (s *Service) resolveCourse(ctx context.Context, reg models.Registration) (id.CourseID, error) {
	rules, err := s.rules.FindByCurriculum(ctx, reg.CampaignID, reg.School, reg.GradeTeaching, reg.Curriculum)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to match enrollment rules")
	}
	if len(rules) == 0 {
		return "", nil
	}
	courseID := rules[0].CourseID
	for _, rule := range rules[1:] {
		if rule.CourseID != courseID {
			s.logger.WarnContext(ctx, "ambiguous course for registration",
				"registration_id", reg.ID,
				"school", reg.School,
				"grade_teaching", reg.GradeTeaching,
				"curriculum", reg.Curriculum,
			)
			return "", nil
		}
	}
	return courseID, nil
}
