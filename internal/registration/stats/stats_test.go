package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollbook/internal/identity"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	campaignStore "rollbook/internal/registration/store/campaign"
	ledgerStore "rollbook/internal/registration/store/ledger"
	ruleStore "rollbook/internal/registration/store/rule"
	id "rollbook/pkg/domain"
)

type StatsSuite struct {
	suite.Suite
	svc    *service.Service
	ledger *ledgerStore.InMemoryStore
	source *Source
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}

func (s *StatsSuite) SetupTest() {
	s.ledger = ledgerStore.NewInMemory()
	s.svc = service.New(campaignStore.NewInMemory(), ruleStore.NewInMemory(), s.ledger, identity.NewInMemory())
	s.source = NewSource(s.svc, s.ledger)
}

func (s *StatsSuite) seed(ref id.CampaignRef, user string) {
	ctx := context.Background()
	_, err := s.svc.ReplaceRules(ctx, ref, []models.RuleSpec{{
		School:        "Jefferson High",
		GradeTeaching: "10",
		Curriculum:    "Algebra II",
		CourseID:      "course-algebra-2",
	}}, false)
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, user, time.Now(), "session-1", ref, models.RegistrationPayload{
		School:        "Jefferson High",
		GradeTeaching: "10",
		CourseID:      "course-algebra-2",
		Phone:         "555-0100",
		EmployeeID:    "E-1001",
		SessionRange:  "Fall 2026",
	})
	s.Require().NoError(err)
}

func (s *StatsSuite) TestBuild() {
	ctx := context.Background()
	ref := id.CampaignRef("camp-stats")
	s.seed(ref, "user-1")
	s.seed(ref, "user-2")

	_, err := s.svc.SubmitSurvey(ctx, "user-1", time.Now(), "session-1", ref, "v1", map[string]any{
		"q one":    "yes",
		"q topics": []any{"algebra", "geometry"},
	})
	s.Require().NoError(err)
	_, err = s.svc.SubmitSurvey(ctx, "user-2", time.Now(), "session-2", ref, "v1", map[string]any{
		"q extra": "maybe",
	})
	s.Require().NoError(err)

	s.Run("full row for a surveyed user", func() {
		report, err := s.source.Build(ctx, "user-1", "")
		s.NoError(err)
		s.Require().NotNil(report.Registration)
		s.Equal("Jefferson High", report.Registration.School)
		s.Equal("Algebra II", report.Registration.Curriculum)
		s.Equal("E-1001", report.Registration.EmployeeID)

		s.Require().NotNil(report.Survey)
		s.Equal("v1", report.Survey.Version)
		s.Equal("yes", report.Survey.Answers["q_one"])
		s.Equal("algebra, geometry", report.Survey.Answers["q_topics"])
	})

	s.Run("unanswered known questions get placeholders", func() {
		report, err := s.source.Build(ctx, "user-1", "")
		s.NoError(err)
		s.Require().NotNil(report.Survey)
		s.Equal("", report.Survey.Answers["q_extra"])
	})

	s.Run("course scope keeps mapped registrations", func() {
		report, err := s.source.Build(ctx, "user-1", "course-algebra-2")
		s.NoError(err)
		s.NotNil(report.Registration)

		report, err = s.source.Build(ctx, "user-1", "course-other")
		s.NoError(err)
		s.Nil(report.Registration)
	})

	s.Run("unknown user yields empty report", func() {
		report, err := s.source.Build(ctx, "user-missing", "")
		s.NoError(err)
		s.Nil(report.Registration)
		s.Nil(report.Survey)
	})
}

func (s *StatsSuite) TestBuildWithoutSurvey() {
	ctx := context.Background()
	ref := id.CampaignRef("camp-nosurvey")
	s.seed(ref, "user-1")

	report, err := s.source.Build(ctx, "user-1", "")
	s.NoError(err)
	s.NotNil(report.Registration)
	s.Nil(report.Survey)
}

func TestQuestionKey(t *testing.T) {
	cases := map[string]string{
		"q one":        "q_one",
		"q  two\tthree": "q_two_three",
		"plain":        "plain",
	}
	for in, want := range cases {
		if got := questionKey(in); got != want {
			t.Fatalf("questionKey(%q) = %q, want %q", in, got, want)
		}
	}
}
