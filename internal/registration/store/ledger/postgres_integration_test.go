//go:build integration

package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollbook/internal/identity"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/store/campaign"
	"rollbook/internal/registration/store/ledger"
	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
	"rollbook/pkg/testutil/containers"
)

type LedgerStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	campaigns  *campaign.PostgresStore
	identities *identity.PostgresStore
	store      *ledger.PostgresStore
}

func TestLedgerStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LedgerStoreSuite))
}

func (s *LedgerStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.campaigns = campaign.NewPostgres(s.postgres.DB)
	s.identities = identity.NewPostgres(s.postgres.DB)
	s.store = ledger.NewPostgres(s.postgres.DB)
}

func (s *LedgerStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"survey_details", "survey_submissions", "registrations", "users", "campaigns")
	s.Require().NoError(err)
}

func (s *LedgerStoreSuite) newRegistration(userRef, campaignRef string) models.Registration {
	ctx := context.Background()
	c, err := s.campaigns.GetOrCreate(ctx, id.CampaignRef(campaignRef))
	s.Require().NoError(err)
	userID, err := s.identities.ResolveOrCreate(ctx, userRef)
	s.Require().NoError(err)

	reg := models.Registration{
		CampaignID:    c.ID,
		UserID:        userID,
		School:        "A",
		GradeTeaching: "1",
		Curriculum:    "Math",
		SessionID:     "session-1",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.store.InsertRegistration(ctx, &reg))
	return reg
}

func (s *LedgerStoreSuite) TestInsertRegistration() {
	ctx := context.Background()
	reg := s.newRegistration("user-1", "camp-1")
	s.NotZero(reg.ID)

	dup := reg
	dup.ID = 0
	err := s.store.InsertRegistration(ctx, &dup)
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentDuplicateRegistration verifies the unique constraint admits
// exactly one registration per (user, campaign) under concurrency.
func (s *LedgerStoreSuite) TestConcurrentDuplicateRegistration() {
	ctx := context.Background()
	c, err := s.campaigns.GetOrCreate(ctx, "camp-concurrent")
	s.Require().NoError(err)
	userID, err := s.identities.ResolveOrCreate(ctx, "user-concurrent")
	s.Require().NoError(err)

	const goroutines = 50
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg := models.Registration{
				CampaignID:    c.ID,
				UserID:        userID,
				School:        "A",
				GradeTeaching: "1",
				Curriculum:    "Math",
				CreatedAt:     time.Now().UTC().Truncate(time.Second),
			}
			err := s.store.InsertRegistration(ctx, &reg)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *LedgerStoreSuite) TestListRegistrations() {
	ctx := context.Background()
	first := s.newRegistration("user-1", "camp-1")
	s.newRegistration("user-1", "camp-2")
	s.newRegistration("user-2", "camp-1")

	regs, err := s.store.ListRegistrations(ctx, ledger.Filter{UserID: &first.UserID})
	s.NoError(err)
	s.Len(regs, 2)

	regs, err = s.store.ListRegistrations(ctx, ledger.Filter{CampaignID: &first.CampaignID})
	s.NoError(err)
	s.Len(regs, 2)

	regs, err = s.store.ListRegistrations(ctx, ledger.Filter{
		UserID:     &first.UserID,
		CampaignID: &first.CampaignID,
	})
	s.NoError(err)
	s.Require().Len(regs, 1)
	s.Equal(first.ID, regs[0].ID)
	s.Equal(first.CreatedAt, regs[0].CreatedAt.UTC())
}

func (s *LedgerStoreSuite) TestSurveyRoundTrip() {
	ctx := context.Background()
	reg := s.newRegistration("user-1", "camp-1")

	sub := models.SurveySubmission{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		Version:        "v1",
		SessionID:      "session-1",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.store.InsertSubmission(ctx, &sub))
	s.NotZero(sub.ID)

	dup := sub
	dup.ID = 0
	s.ErrorIs(s.store.InsertSubmission(ctx, &dup), sentinel.ErrConflict)

	details := []models.SurveyDetail{
		{SubmissionID: sub.ID, QuestionID: "q_one", Raw: []byte(`"yes"`)},
		{SubmissionID: sub.ID, QuestionID: "q_map", Raw: []byte(`{"1":"a"}`)},
	}
	s.Require().NoError(s.store.InsertDetails(ctx, details))

	got, err := s.store.GetSubmissionForRegistration(ctx, reg.ID)
	s.NoError(err)
	s.Equal(sub.ID, got.ID)

	stored, err := s.store.ListDetails(ctx, sub.ID)
	s.NoError(err)
	s.Require().Len(stored, 2)

	questions, err := s.store.ListQuestionIDs(ctx, reg.CampaignID)
	s.NoError(err)
	s.Equal(map[string]struct{}{"q_one": {}, "q_map": {}}, questions)
}

func (s *LedgerStoreSuite) TestDeleteRegistrationCascades() {
	ctx := context.Background()
	reg := s.newRegistration("user-1", "camp-1")

	sub := models.SurveySubmission{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		Version:        "v1",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.store.InsertSubmission(ctx, &sub))
	s.Require().NoError(s.store.InsertDetails(ctx, []models.SurveyDetail{
		{SubmissionID: sub.ID, QuestionID: "q_one", Raw: []byte(`"yes"`)},
	}))

	s.Require().NoError(s.store.DeleteRegistration(ctx, reg.ID))

	_, err := s.store.GetSubmissionForRegistration(ctx, reg.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	details, err := s.store.ListDetails(ctx, sub.ID)
	s.NoError(err)
	s.Empty(details)

	questions, err := s.store.ListQuestionIDs(ctx, reg.CampaignID)
	s.NoError(err)
	s.Empty(questions)
}
