package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rollbook/internal/identity"
	jwttoken "rollbook/internal/jwt_token"
	"rollbook/internal/registration/handler"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	campaignstore "rollbook/internal/registration/store/campaign"
	ledgerstore "rollbook/internal/registration/store/ledger"
	rulestore "rollbook/internal/registration/store/rule"
	id "rollbook/pkg/domain"
	"rollbook/pkg/testutil"
)

const routerAdminToken = "router-admin-token"

// RouterSuite drives the mounted routes through the full middleware chain
// with a real service over in-memory stores and a real JWT validator.
type RouterSuite struct {
	suite.Suite

	router http.Handler
	jwt    *jwttoken.JWTService
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(
		campaignstore.NewInMemory(),
		rulestore.NewInMemory(),
		ledgerstore.NewInMemory(),
		identity.NewInMemory(),
		service.WithLogger(logger),
	)

	s.jwt = jwttoken.NewJWTService("router-test-key", "rollbook", "rollbook-api")

	r := chi.NewRouter()
	handler.New(svc, logger, nil, jwttoken.NewAdapter(s.jwt), routerAdminToken).Register(r)
	s.router = r
}

func (s *RouterSuite) bearer(userRef string) string {
	token, err := s.jwt.GenerateAccessToken(userRef, "session-router", time.Minute)
	require.NoError(s.T(), err)
	return "Bearer " + token
}

func (s *RouterSuite) seedRules() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/campaigns/spring-2026/rules", handler.ReplaceRulesRequest{
		Rules: []models.RuleSpec{{
			School:        "Jefferson High",
			GradeTeaching: "10",
			Curriculum:    "Algebra II",
			CourseID:      id.CourseID("course-algebra-2"),
		}},
	})
	req.Header.Set("X-Admin-Token", routerAdminToken)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}

func registerBody() handler.RegisterRequest {
	return handler.RegisterRequest{
		Campaign:      "spring-2026",
		School:        "Jefferson High",
		GradeTeaching: "10",
		CourseID:      "course-algebra-2",
		Phone:         "555-0100",
		EmployeeID:    "E-77",
	}
}

func (s *RouterSuite) TestRegistrationFlow() {
	s.seedRules()

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
	req.Header.Set("Authorization", s.bearer("teacher-1"))
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[handler.RegistrationResponse](s.T(), rr)
	assert.Equal(s.T(), "Algebra II", resp.Curriculum)
	assert.Equal(s.T(), "Jefferson High", resp.School)

	// The admin listing sees the new registration.
	listReq := testutil.NewRequest(s.T(), http.MethodGet, "/registrations?user=teacher-1&campaign=spring-2026")
	listReq.Header.Set("X-Admin-Token", routerAdminToken)
	listRR := testutil.DoRequest(s.router, listReq)
	testutil.AssertStatusOK(s.T(), listRR)
	listed := testutil.UnmarshalResponse[[]handler.RegistrationResponse](s.T(), listRR)
	require.Len(s.T(), *listed, 1)

	// A second attempt for the same campaign conflicts.
	dup := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
	dup.Header.Set("Authorization", s.bearer("teacher-1"))
	dupRR := testutil.DoRequest(s.router, dup)
	testutil.AssertStatus(s.T(), dupRR, http.StatusConflict)
	assert.Equal(s.T(), "duplicate_registration", testutil.UnmarshalErrorResponse(s.T(), dupRR)["error"])
}

func (s *RouterSuite) TestSurveyFlow() {
	s.seedRules()

	reg := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
	reg.Header.Set("Authorization", s.bearer("teacher-2"))
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, reg), http.StatusCreated)

	submit := testutil.NewJSONRequest(s.T(), http.MethodPost, "/surveys", handler.SubmitSurveyRequest{
		Campaign: "spring-2026",
		Version:  "v1",
		Answers:  map[string]any{"q one": "yes"},
	})
	submit.Header.Set("Authorization", s.bearer("teacher-2"))
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, submit), http.StatusCreated)

	get := testutil.NewRequest(s.T(), http.MethodGet, "/surveys?campaign=spring-2026")
	get.Header.Set("Authorization", s.bearer("teacher-2"))
	getRR := testutil.DoRequest(s.router, get)
	testutil.AssertStatusOK(s.T(), getRR)
	survey := testutil.UnmarshalResponse[handler.SurveyResponse](s.T(), getRR)
	assert.Equal(s.T(), "v1", survey.Version)
	assert.Equal(s.T(), "yes", survey.Answers["q one"])
}

func (s *RouterSuite) TestAuthRejections() {
	s.Run("missing bearer token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("expired bearer token", func() {
		token, err := s.jwt.GenerateAccessToken("teacher-3", "session-router", -time.Minute)
		require.NoError(s.T(), err)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("wrong admin token", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/registrations?user=teacher-1")
		req.Header.Set("X-Admin-Token", "nope")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("admin token does not open user routes", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/registrations", registerBody())
		req.Header.Set("X-Admin-Token", routerAdminToken)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *RouterSuite) TestContentTypeEnforced() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registrations", `{"campaign":"spring-2026"}`)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", s.bearer("teacher-1"))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusUnsupportedMediaType)
}
