package ledger

import (
	"context"
	"sync"

	"rollbook/internal/registration/models"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// InMemoryStore is the test/dev ledger. It enforces the same uniqueness
// invariants the postgres schema does, so services exercise identical
// conflict paths either way.
type InMemoryStore struct {
	mu            sync.Mutex
	registrations []models.Registration
	submissions   []models.SurveySubmission
	details       []models.SurveyDetail
	nextRegID     id.RegistrationID
	nextSubID     id.SubmissionID
	nextDetailID  int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) InsertRegistration(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.registrations {
		if existing.UserID == r.UserID && existing.CampaignID == r.CampaignID {
			return sentinel.ErrConflict
		}
	}
	s.nextRegID++
	r.ID = s.nextRegID
	s.registrations = append(s.registrations, *r)
	return nil
}

func (s *InMemoryStore) ListRegistrations(_ context.Context, filter Filter) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.Registration
	for _, r := range s.registrations {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.CampaignID != nil && r.CampaignID != *filter.CampaignID {
			continue
		}
		matches = append(matches, r)
	}
	return matches, nil
}

func (s *InMemoryStore) DeleteRegistration(_ context.Context, registrationID id.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.registrations[:0]
	for _, r := range s.registrations {
		if r.ID != registrationID {
			kept = append(kept, r)
		}
	}
	s.registrations = kept

	// Cascade to the submission and its details.
	var subIDs []id.SubmissionID
	keptSubs := s.submissions[:0]
	for _, sub := range s.submissions {
		if sub.RegistrationID == registrationID {
			subIDs = append(subIDs, sub.ID)
			continue
		}
		keptSubs = append(keptSubs, sub)
	}
	s.submissions = keptSubs

	keptDetails := s.details[:0]
	for _, d := range s.details {
		cascaded := false
		for _, subID := range subIDs {
			if d.SubmissionID == subID {
				cascaded = true
				break
			}
		}
		if !cascaded {
			keptDetails = append(keptDetails, d)
		}
	}
	s.details = keptDetails
	return nil
}

func (s *InMemoryStore) InsertSubmission(_ context.Context, sub *models.SurveySubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.submissions {
		if existing.RegistrationID == sub.RegistrationID {
			return sentinel.ErrConflict
		}
	}
	s.nextSubID++
	sub.ID = s.nextSubID
	s.submissions = append(s.submissions, *sub)
	return nil
}

func (s *InMemoryStore) InsertDetails(_ context.Context, details []models.SurveyDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range details {
		s.nextDetailID++
		d.ID = s.nextDetailID
		s.details = append(s.details, d)
	}
	return nil
}

func (s *InMemoryStore) GetSubmissionForRegistration(_ context.Context, registrationID id.RegistrationID) (models.SurveySubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.submissions {
		if sub.RegistrationID == registrationID {
			return sub, nil
		}
	}
	return models.SurveySubmission{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListDetails(_ context.Context, submissionID id.SubmissionID) ([]models.SurveyDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var details []models.SurveyDetail
	for _, d := range s.details {
		if d.SubmissionID == submissionID {
			details = append(details, d)
		}
	}
	return details, nil
}

func (s *InMemoryStore) ListQuestionIDs(_ context.Context, campaignID id.CampaignID) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subsInCampaign := make(map[id.SubmissionID]bool)
	for _, sub := range s.submissions {
		for _, r := range s.registrations {
			if r.ID == sub.RegistrationID && r.CampaignID == campaignID {
				subsInCampaign[sub.ID] = true
			}
		}
	}

	questions := make(map[string]struct{})
	for _, d := range s.details {
		if subsInCampaign[d.SubmissionID] {
			questions[d.QuestionID] = struct{}{}
		}
	}
	return questions, nil
}
