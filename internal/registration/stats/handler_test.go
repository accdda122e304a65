package stats

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"rollbook/internal/identity"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	campaignStore "rollbook/internal/registration/store/campaign"
	ledgerStore "rollbook/internal/registration/store/ledger"
	ruleStore "rollbook/internal/registration/store/rule"
	"rollbook/pkg/testutil"
)

type StatsHandlerSuite struct {
	suite.Suite
	svc    *service.Service
	ledger *ledgerStore.InMemoryStore
	source *Source
	router http.Handler
}

func TestStatsHandlerSuite(t *testing.T) {
	suite.Run(t, new(StatsHandlerSuite))
}

func (s *StatsHandlerSuite) SetupTest() {
	s.ledger = ledgerStore.NewInMemory()
	s.svc = service.New(campaignStore.NewInMemory(), ruleStore.NewInMemory(), s.ledger, identity.NewInMemory())
	s.source = NewSource(s.svc, s.ledger)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(s.source, logger, "stats-admin").Register(r)
	s.router = r
}

func (s *StatsHandlerSuite) seed(user string) {
	ctx := context.Background()
	_, err := s.svc.ReplaceRules(ctx, "spring-2026", []models.RuleSpec{{
		School:        "Jefferson High",
		GradeTeaching: "10",
		Curriculum:    "Algebra II",
		CourseID:      "course-algebra-2",
	}}, false)
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, user, time.Now(), "session-1", "spring-2026", models.RegistrationPayload{
		School:        "Jefferson High",
		GradeTeaching: "10",
		CourseID:      "course-algebra-2",
		Phone:         "555-0100",
		EmployeeID:    "E-1001",
		SessionRange:  "Fall 2026",
	})
	s.Require().NoError(err)
}

func (s *StatsHandlerSuite) TestUserStats() {
	s.seed("teacher-9")

	req := testutil.NewRequest(s.T(), http.MethodGet, "/stats/users/teacher-9")
	req.Header.Set("X-Admin-Token", "stats-admin")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	report := testutil.UnmarshalResponse[Report](s.T(), rr)
	s.Require().NotNil(report.Registration)
	s.Equal("Jefferson High", report.Registration.School)
	s.Equal("Algebra II", report.Registration.Curriculum)
}

func (s *StatsHandlerSuite) TestRequiresAdminToken() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/stats/users/teacher-9")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *StatsHandlerSuite) TestUnknownUserEmptyReport() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/stats/users/nobody")
	req.Header.Set("X-Admin-Token", "stats-admin")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	report := testutil.UnmarshalResponse[Report](s.T(), rr)
	s.Nil(report.Registration)
	s.Nil(report.Survey)
}
