package service

import (
	"context"
	"errors"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/sentinel"
)

// ReplaceRules swaps out a campaign's enrollment rules. The delete and the
// inserts run in one transaction so concurrent readers never observe a
// ruleless campaign. Returns the number of rules inserted.
func (s *Service) ReplaceRules(ctx context.Context, campaignRef id.CampaignRef, specs []models.RuleSpec, truncate bool) (int, error) {
	ctx, span := tracer.Start(ctx, "registration.ReplaceRules")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		campaign, err := s.campaigns.GetOrCreate(ctx, campaignRef)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
		}
		deleted, err := s.rules.ReplaceRules(ctx, campaign.ID, specs, truncate)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace enrollment rules")
		}
		s.logger.InfoContext(ctx, "replaced enrollment rules",
			"campaign", campaignRef,
			"deleted", deleted,
			"inserted", len(specs),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RuleReplacements.Inc()
	}
	return len(specs), nil
}

// ReplaceSessions swaps out a campaign's session ranges. Same transactional
// shape as ReplaceRules.
func (s *Service) ReplaceSessions(ctx context.Context, campaignRef id.CampaignRef, specs []models.SessionSpec, truncate bool) (int, error) {
	ctx, span := tracer.Start(ctx, "registration.ReplaceSessions")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		campaign, err := s.campaigns.GetOrCreate(ctx, campaignRef)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
		}
		deleted, err := s.rules.ReplaceSessions(ctx, campaign.ID, specs, truncate)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace session ranges")
		}
		s.logger.InfoContext(ctx, "replaced session ranges",
			"campaign", campaignRef,
			"deleted", deleted,
			"inserted", len(specs),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RuleReplacements.Inc()
	}
	return len(specs), nil
}

// ListRules returns a campaign's enrollment rules in insertion order, or
// reversed when descending is set. An unknown campaign yields nil.
func (s *Service) ListRules(ctx context.Context, campaignRef id.CampaignRef, descending bool) ([]models.EnrollmentRule, error) {
	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
	}
	rules, err := s.rules.ListRules(ctx, campaign.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list enrollment rules")
	}
	if descending {
		reverse(rules)
	}
	return rules, nil
}

// ListSessions is the session-range counterpart of ListRules.
func (s *Service) ListSessions(ctx context.Context, campaignRef id.CampaignRef, descending bool) ([]models.SessionRange, error) {
	campaign, err := s.campaigns.GetByRef(ctx, campaignRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve campaign")
	}
	sessions, err := s.rules.ListSessions(ctx, campaign.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list session ranges")
	}
	if descending {
		reverse(sessions)
	}
	return sessions, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
