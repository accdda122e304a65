package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rollbook/internal/registration/handler/mocks"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mockService, logger, nil, nil, "admin-token"), mockService
}

func authedRequest(method, target string, body []byte, userRef string) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = testutil.WithAuth(req, userRef, "session-1")
	return testutil.WithRequestTime(req, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
}

func (s *HandlerSuite) TestHandleRegister() {
	s.Run("created with resolved curriculum", func() {
		handler, mockService := newTestHandler(s.T())
		at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		mockService.EXPECT().Register(
			gomock.Any(), "user-1", at, "session-1", id.CampaignRef("camp-1"),
			models.RegistrationPayload{
				School:        "Jefferson High",
				GradeTeaching: "10",
				CourseID:      "course-algebra-2",
				SessionRange:  "Fall 2026",
			},
		).Return(models.Registration{
			ID:         7,
			Curriculum: "Algebra II",
			CreatedAt:  at,
		}, nil)

		body, err := json.Marshal(RegisterRequest{
			Campaign:      "camp-1",
			School:        "Jefferson High",
			GradeTeaching: "10",
			CourseID:      "course-algebra-2",
			SessionRange:  "Fall 2026",
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleRegister(w, authedRequest(http.MethodPost, "/registrations", body, "user-1"))

		assert.Equal(s.T(), http.StatusCreated, w.Code)
		var resp RegistrationResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), int64(7), resp.ID)
		assert.Equal(s.T(), "Algebra II", resp.Curriculum)
	})

	s.Run("duplicate maps to conflict", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().Register(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return(models.Registration{}, dErrors.New(dErrors.CodeDuplicateRegistration, "user already registered for this campaign"))

		body, err := json.Marshal(RegisterRequest{
			Campaign:      "camp-1",
			School:        "Jefferson High",
			GradeTeaching: "10",
			CourseID:      "course-algebra-2",
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleRegister(w, authedRequest(http.MethodPost, "/registrations", body, "user-1"))

		assert.Equal(s.T(), http.StatusConflict, w.Code)
		var resp map[string]string
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), "duplicate_registration", resp["error"])
	})

	s.Run("missing school is rejected before the service", func() {
		handler, _ := newTestHandler(s.T())
		body, err := json.Marshal(RegisterRequest{
			Campaign:      "camp-1",
			GradeTeaching: "10",
			CourseID:      "course-algebra-2",
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleRegister(w, authedRequest(http.MethodPost, "/registrations", body, "user-1"))
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})

	s.Run("malformed body is a bad request", func() {
		handler, _ := newTestHandler(s.T())
		w := httptest.NewRecorder()
		handler.handleRegister(w, authedRequest(http.MethodPost, "/registrations", []byte("{"), "user-1"))
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestHandleValidate() {
	s.Run("returns curriculum on match", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().Validate(
			gomock.Any(), id.CampaignRef("camp-1"), "Jefferson High", "10", id.CourseID("course-algebra-2"),
		).Return("Algebra II", nil)

		body, err := json.Marshal(ValidateRequest{
			Campaign:      "camp-1",
			School:        "Jefferson High",
			GradeTeaching: "10",
			CourseID:      "course-algebra-2",
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleValidate(w, authedRequest(http.MethodPost, "/registrations/validate", body, "user-1"))

		assert.Equal(s.T(), http.StatusOK, w.Code)
		var resp ValidateResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), "Algebra II", resp.Curriculum)
	})

	s.Run("unmapped triple is unprocessable", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().Validate(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return("", dErrors.New(dErrors.CodeInvalidCourseMapping, "no enrollment rule maps the submitted school, grade, and course"))

		body, err := json.Marshal(ValidateRequest{Campaign: "camp-1"})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleValidate(w, authedRequest(http.MethodPost, "/registrations/validate", body, "user-1"))
		assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	})
}

func (s *HandlerSuite) TestHandleSubmitSurvey() {
	s.Run("created", func() {
		handler, mockService := newTestHandler(s.T())
		at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		mockService.EXPECT().SubmitSurvey(
			gomock.Any(), "user-1", at, "session-1", id.CampaignRef("camp-1"), "v2",
			map[string]any{"q_one": "a"},
		).Return(models.SurveySubmission{ID: 3, Version: "v2", CreatedAt: at}, nil)

		body, err := json.Marshal(SubmitSurveyRequest{
			Campaign: "camp-1",
			Version:  "v2",
			Answers:  map[string]any{"q_one": "a"},
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleSubmitSurvey(w, authedRequest(http.MethodPost, "/surveys", body, "user-1"))

		assert.Equal(s.T(), http.StatusCreated, w.Code)
		var resp SurveyResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), int64(3), resp.ID)
	})

	s.Run("no registration is precondition failed", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().SubmitSurvey(
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return(models.SurveySubmission{}, dErrors.New(dErrors.CodeNoRegistration, "user has no registration for this campaign"))

		body, err := json.Marshal(SubmitSurveyRequest{
			Campaign: "camp-1",
			Answers:  map[string]any{"q_one": "a"},
		})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleSubmitSurvey(w, authedRequest(http.MethodPost, "/surveys", body, "user-1"))
		assert.Equal(s.T(), http.StatusPreconditionFailed, w.Code)
	})

	s.Run("empty answers rejected", func() {
		handler, _ := newTestHandler(s.T())
		body, err := json.Marshal(SubmitSurveyRequest{Campaign: "camp-1"})
		require.NoError(s.T(), err)

		w := httptest.NewRecorder()
		handler.handleSubmitSurvey(w, authedRequest(http.MethodPost, "/surveys", body, "user-1"))
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestHandleGetSurvey() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().GetSurvey(gomock.Any(), "user-1", id.CampaignRef("camp-1")).
		Return(service.Survey{
			Submission: models.SurveySubmission{ID: 3, Version: "v2"},
			Answers:    map[string]any{"q_one": "a"},
		}, nil)

	w := httptest.NewRecorder()
	handler.handleGetSurvey(w, authedRequest(http.MethodGet, "/surveys?campaign=camp-1", nil, "user-1"))

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp SurveyResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "a", resp.Answers["q_one"])
}

func (s *HandlerSuite) TestHandleListQuestions() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().ListSurveyQuestionIDs(gomock.Any(), id.CampaignRef("camp-1")).
		Return(map[string]struct{}{"q_two": {}, "q_one": {}}, nil)

	req := authedRequest(http.MethodGet, "/campaigns/camp-1/questions", nil, "user-1")
	req = withURLParam(req, "campaign", "camp-1")

	w := httptest.NewRecorder()
	handler.handleListQuestions(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp QuestionsResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), []string{"q_one", "q_two"}, resp.QuestionIDs)
}

func (s *HandlerSuite) TestHandleReplaceRules() {
	s.Run("replaces rules", func() {
		handler, mockService := newTestHandler(s.T())
		specs := []models.RuleSpec{{
			School:        "Jefferson High",
			GradeTeaching: "10",
			Curriculum:    "Algebra II",
			CourseID:      "course-algebra-2",
		}}
		mockService.EXPECT().ReplaceRules(gomock.Any(), id.CampaignRef("camp-1"), specs, true).
			Return(1, nil)

		body, err := json.Marshal(ReplaceRulesRequest{Truncate: true, Rules: specs})
		require.NoError(s.T(), err)

		req := authedRequest(http.MethodPut, "/campaigns/camp-1/rules", body, "admin")
		req = withURLParam(req, "campaign", "camp-1")

		w := httptest.NewRecorder()
		handler.handleReplaceRules(w, req)

		assert.Equal(s.T(), http.StatusOK, w.Code)
		var resp ReplaceResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), 1, resp.Inserted)
	})

	s.Run("empty list with truncate clears rules", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().ReplaceRules(gomock.Any(), id.CampaignRef("camp-1"), nil, true).
			Return(0, nil)

		body, err := json.Marshal(ReplaceRulesRequest{Truncate: true})
		require.NoError(s.T(), err)

		req := authedRequest(http.MethodPut, "/campaigns/camp-1/rules", body, "admin")
		req = withURLParam(req, "campaign", "camp-1")

		w := httptest.NewRecorder()
		handler.handleReplaceRules(w, req)

		assert.Equal(s.T(), http.StatusOK, w.Code)
		var resp ReplaceResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), 0, resp.Inserted)
	})

	s.Run("empty list without truncate rejected", func() {
		handler, _ := newTestHandler(s.T())

		body, err := json.Marshal(ReplaceRulesRequest{})
		require.NoError(s.T(), err)

		req := authedRequest(http.MethodPut, "/campaigns/camp-1/rules", body, "admin")
		req = withURLParam(req, "campaign", "camp-1")

		w := httptest.NewRecorder()
		handler.handleReplaceRules(w, req)

		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestHandleDeleteRegistrations() {
	s.Run("returns purged rows with courses", func() {
		handler, mockService := newTestHandler(s.T())
		mockService.EXPECT().DeleteRegistrations(gomock.Any(), "user-1", id.CampaignRef("camp-1")).
			Return([]models.DeletedRegistration{{
				Registration: models.Registration{ID: 7, Curriculum: "Algebra II"},
				CourseID:     "course-algebra-2",
			}}, nil)

		w := httptest.NewRecorder()
		handler.handleDeleteRegistrations(w,
			authedRequest(http.MethodDelete, "/registrations?user=user-1&campaign=camp-1", nil, "admin"))

		assert.Equal(s.T(), http.StatusOK, w.Code)
		var resp []DeletedRegistrationResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(s.T(), resp, 1)
		assert.Equal(s.T(), "course-algebra-2", resp[0].CourseID)
	})

	s.Run("missing user is rejected", func() {
		handler, _ := newTestHandler(s.T())
		w := httptest.NewRecorder()
		handler.handleDeleteRegistrations(w,
			authedRequest(http.MethodDelete, "/registrations?campaign=camp-1", nil, "admin"))
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
