package rule

import (
	"context"
	"sync"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// InMemoryStore is the test/dev rule store.
type InMemoryStore struct {
	mu             sync.Mutex
	rules          []models.EnrollmentRule
	sessions       []models.SessionRange
	nextRuleID     int64
	nextSessionID  int64
	globalTruncate bool
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithGlobalTruncateInMemory mirrors the postgres store's global truncation mode.
func WithGlobalTruncateInMemory() InMemoryOption {
	return func(s *InMemoryStore) { s.globalTruncate = true }
}

func NewInMemory(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) ReplaceRules(_ context.Context, campaignID id.CampaignID, specs []models.RuleSpec, truncate bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	if truncate {
		kept := s.rules[:0]
		for _, r := range s.rules {
			if !s.globalTruncate && r.CampaignID != campaignID {
				kept = append(kept, r)
				continue
			}
			deleted++
		}
		s.rules = kept
	}
	for _, spec := range specs {
		s.nextRuleID++
		s.rules = append(s.rules, models.EnrollmentRule{
			ID:            s.nextRuleID,
			CampaignID:    campaignID,
			School:        spec.School,
			GradeTeaching: spec.GradeTeaching,
			Curriculum:    spec.Curriculum,
			CourseID:      spec.CourseID,
		})
	}
	return deleted, nil
}

func (s *InMemoryStore) ReplaceSessions(_ context.Context, campaignID id.CampaignID, specs []models.SessionSpec, truncate bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	if truncate {
		kept := s.sessions[:0]
		for _, sr := range s.sessions {
			if !s.globalTruncate && sr.CampaignID != campaignID {
				kept = append(kept, sr)
				continue
			}
			deleted++
		}
		s.sessions = kept
	}
	for _, spec := range specs {
		s.nextSessionID++
		s.sessions = append(s.sessions, models.SessionRange{
			ID:         s.nextSessionID,
			CampaignID: campaignID,
			Label:      spec.Label,
			Curriculum: spec.Curriculum,
			CourseID:   spec.CourseID,
		})
	}
	return deleted, nil
}

func (s *InMemoryStore) ListRules(_ context.Context, campaignID id.CampaignID) ([]models.EnrollmentRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rules []models.EnrollmentRule
	for _, r := range s.rules {
		if r.CampaignID == campaignID {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func (s *InMemoryStore) ListSessions(_ context.Context, campaignID id.CampaignID) ([]models.SessionRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sessions []models.SessionRange
	for _, sr := range s.sessions {
		if sr.CampaignID == campaignID {
			sessions = append(sessions, sr)
		}
	}
	return sessions, nil
}

func (s *InMemoryStore) FindMatch(_ context.Context, campaignID id.CampaignID, school, gradeTeaching string, courseID id.CourseID) (models.EnrollmentRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.CampaignID == campaignID && r.School == school &&
			r.GradeTeaching == gradeTeaching && r.CourseID == courseID {
			return r, nil
		}
	}
	return models.EnrollmentRule{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByCurriculum(_ context.Context, campaignID id.CampaignID, school, gradeTeaching, curriculum string) ([]models.EnrollmentRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.EnrollmentRule
	for _, r := range s.rules {
		if r.CampaignID == campaignID && r.School == school &&
			r.GradeTeaching == gradeTeaching && r.Curriculum == curriculum {
			matches = append(matches, r)
		}
	}
	return matches, nil
}
