// Package handler exposes the registration workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"rollbook/internal/platform/metrics"
	"rollbook/internal/platform/middleware"
	"rollbook/internal/registration/models"
	"rollbook/internal/registration/service"
	id "rollbook/pkg/domain"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/httputil"
	"rollbook/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the registration operations the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, userRef string, timestamp time.Time, sessionID string, campaignRef id.CampaignRef, payload models.RegistrationPayload) (models.Registration, error)
	Validate(ctx context.Context, campaignRef id.CampaignRef, school, gradeTeaching string, courseID id.CourseID) (string, error)
	SubmitSurvey(ctx context.Context, userRef string, timestamp time.Time, sessionID string, campaignRef id.CampaignRef, version string, answers map[string]any) (models.SurveySubmission, error)
	GetSurvey(ctx context.Context, userRef string, campaignRef id.CampaignRef) (service.Survey, error)
	ListSurveyQuestionIDs(ctx context.Context, campaignRef id.CampaignRef) (map[string]struct{}, error)
	ReplaceRules(ctx context.Context, campaignRef id.CampaignRef, specs []models.RuleSpec, truncate bool) (int, error)
	ReplaceSessions(ctx context.Context, campaignRef id.CampaignRef, specs []models.SessionSpec, truncate bool) (int, error)
	ListRules(ctx context.Context, campaignRef id.CampaignRef, descending bool) ([]models.EnrollmentRule, error)
	ListSessions(ctx context.Context, campaignRef id.CampaignRef, descending bool) ([]models.SessionRange, error)
	ListRegistrations(ctx context.Context, filter service.ListFilter) ([]models.Registration, error)
	DeleteRegistrations(ctx context.Context, userRef string, campaignRef id.CampaignRef) ([]models.DeletedRegistration, error)
}

// Handler handles registration, survey, and campaign-administration endpoints.
type Handler struct {
	logger       *slog.Logger
	registration Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	adminToken   string
}

// New creates a registration Handler.
func New(
	registration Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	adminToken string) *Handler {
	return &Handler{
		logger:       logger,
		registration: registration,
		metrics:      m,
		jwtValidator: jwtValidator,
		adminToken:   adminToken,
	}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	base := chi.NewRouter()
	base.Use(middleware.Recovery(h.logger))
	base.Use(middleware.RequestID)
	base.Use(middleware.RequestTime)
	base.Use(middleware.Logger(h.logger))
	base.Use(middleware.Timeout(30 * time.Second))
	base.Use(middleware.ContentTypeJSON)
	base.Use(middleware.LatencyMiddleware(h.metrics))

	base.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/registrations", h.handleRegister)
		r.Post("/registrations/validate", h.handleValidate)
		r.Post("/surveys", h.handleSubmitSurvey)
		r.Get("/surveys", h.handleGetSurvey)
		r.Get("/campaigns/{campaign}/rules", h.handleListRules)
		r.Get("/campaigns/{campaign}/sessions", h.handleListSessions)
		r.Get("/campaigns/{campaign}/questions", h.handleListQuestions)
	})

	base.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Put("/campaigns/{campaign}/rules", h.handleReplaceRules)
		r.Put("/campaigns/{campaign}/sessions", h.handleReplaceSessions)
		r.Get("/registrations", h.handleListRegistrations)
		r.Delete("/registrations", h.handleDeleteRegistrations)
	})

	r.Mount("/", base)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userRef := requestcontext.UserRef(ctx)
	if userRef == "" {
		h.authContextError(ctx, w)
		return
	}

	var req RegisterRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	reg, err := h.registration.Register(ctx, userRef, requestcontext.Now(ctx),
		requestcontext.SessionID(ctx), req.parsedCampaign, req.Payload())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to register")
		return
	}

	h.writeJSON(ctx, w, http.StatusCreated, FromRegistration(reg))
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ValidateRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	curriculum, err := h.registration.Validate(ctx, req.parsedCampaign,
		req.School, req.GradeTeaching, id.CourseID(req.CourseID))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to validate registration")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, ValidateResponse{Curriculum: curriculum})
}

func (h *Handler) handleSubmitSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userRef := requestcontext.UserRef(ctx)
	if userRef == "" {
		h.authContextError(ctx, w)
		return
	}

	var req SubmitSurveyRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	sub, err := h.registration.SubmitSurvey(ctx, userRef, requestcontext.Now(ctx),
		requestcontext.SessionID(ctx), req.parsedCampaign, req.Version, req.Answers)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to submit survey")
		return
	}

	h.writeJSON(ctx, w, http.StatusCreated, SurveyResponse{
		ID:        int64(sub.ID),
		Version:   sub.Version,
		SessionID: sub.SessionID,
		CreatedAt: sub.CreatedAt,
	})
}

func (h *Handler) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userRef := requestcontext.UserRef(ctx)
	if userRef == "" {
		h.authContextError(ctx, w)
		return
	}

	campaign, err := parseCampaign(r.URL.Query().Get("campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	survey, err := h.registration.GetSurvey(ctx, userRef, campaign)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load survey")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, FromSurvey(survey))
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaign, err := parseCampaign(chi.URLParam(r, "campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	questions, err := h.registration.ListSurveyQuestionIDs(ctx, campaign)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list survey questions")
		return
	}

	ids := make([]string, 0, len(questions))
	for question := range questions {
		ids = append(ids, question)
	}
	sort.Strings(ids)

	h.writeJSON(ctx, w, http.StatusOK, QuestionsResponse{QuestionIDs: ids})
}

func (h *Handler) handleReplaceRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaign, err := parseCampaign(chi.URLParam(r, "campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req ReplaceRulesRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	inserted, err := h.registration.ReplaceRules(ctx, campaign, req.Rules, req.Truncate)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to replace rules")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, ReplaceResponse{Inserted: inserted})
}

func (h *Handler) handleReplaceSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaign, err := parseCampaign(chi.URLParam(r, "campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req ReplaceSessionsRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	inserted, err := h.registration.ReplaceSessions(ctx, campaign, req.Sessions, req.Truncate)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to replace sessions")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, ReplaceResponse{Inserted: inserted})
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaign, err := parseCampaign(chi.URLParam(r, "campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rules, err := h.registration.ListRules(ctx, campaign, r.URL.Query().Get("order") == "desc")
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list rules")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, rules)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaign, err := parseCampaign(chi.URLParam(r, "campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sessions, err := h.registration.ListSessions(ctx, campaign, r.URL.Query().Get("order") == "desc")
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list sessions")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, sessions)
}

func (h *Handler) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := service.ListFilter{
		UserRef:     query.Get("user"),
		CampaignRef: id.CampaignRef(query.Get("campaign")),
		CourseRef:   query.Get("course"),
	}

	regs, err := h.registration.ListRegistrations(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list registrations")
		return
	}

	out := make([]RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, FromRegistration(reg))
	}
	h.writeJSON(ctx, w, http.StatusOK, out)
}

func (h *Handler) handleDeleteRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	userRef := query.Get("user")
	if userRef == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user is required"))
		return
	}
	campaign, err := parseCampaign(query.Get("campaign"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deleted, err := h.registration.DeleteRegistrations(ctx, userRef, campaign)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete registrations")
		return
	}

	out := make([]DeletedRegistrationResponse, 0, len(deleted))
	for _, d := range deleted {
		out = append(out, DeletedRegistrationResponse{
			Registration: FromRegistration(d.Registration),
			CourseID:     string(d.CourseID),
		})
	}
	h.writeJSON(ctx, w, http.StatusOK, out)
}

// decode reads and validates a JSON request body, writing the error response
// itself when the body is unusable.
func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, req interface {
	Validate() error
}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (h *Handler) authContextError(ctx context.Context, w http.ResponseWriter) {
	h.logger.ErrorContext(ctx, "user reference missing from context despite auth middleware",
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
}
