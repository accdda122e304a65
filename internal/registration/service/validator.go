package service

import (
	"context"
	"errors"

	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/sentinel"
)

// Validate decides whether a prospective registration's (school, grade,
// course) triple is admissible under the campaign's enrollment rules,
// returning the applicable curriculum.
//
// No matching rule is a permanent rejection of the submitted data, not a
// transient fault; it is logged with identifying fields and never retried.
func (s *Service) Validate(ctx context.Context, campaignRef id.CampaignRef, school, gradeTeaching string, courseID id.CourseID) (string, error) {
	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", s.rejectMapping(ctx, campaignRef, school, gradeTeaching, courseID)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
	}
	return s.validate(ctx, campaign.ID, campaignRef, school, gradeTeaching, courseID)
}

// validate is the campaign-resolved core shared with Register.
//
// The rule store's invariant guarantees at most one logical match per exact
// (school, grade, course) key; ambiguity only arises in the reverse lookup.
func (s *Service) validate(ctx context.Context, campaignID id.CampaignID, campaignRef id.CampaignRef, school, gradeTeaching string, courseID id.CourseID) (string, error) {
	rule, err := s.rules.FindMatch(ctx, campaignID, school, gradeTeaching, courseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", s.rejectMapping(ctx, campaignRef, school, gradeTeaching, courseID)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to match enrollment rules")
	}
	return rule.Curriculum, nil
}

func (s *Service) rejectMapping(ctx context.Context, campaignRef id.CampaignRef, school, gradeTeaching string, courseID id.CourseID) error {
	s.logger.InfoContext(ctx, "no enrollment rule for registration",
		"campaign", campaignRef,
		"school", school,
		"grade_teaching", gradeTeaching,
		"course_id", courseID,
	)
	return dErrors.New(dErrors.CodeInvalidCourseMapping, "no enrollment rule maps the submitted school, grade, and course")
}
