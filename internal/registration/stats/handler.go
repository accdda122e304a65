package stats

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollbook/internal/platform/middleware"
	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/httputil"
	"rollbook/pkg/requestcontext"
)

// Handler serves per-user stats rows to reporting consumers.
type Handler struct {
	source     *Source
	logger     *slog.Logger
	adminToken string
}

func NewHandler(source *Source, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{source: source, logger: logger, adminToken: adminToken}
}

// Register registers the stats routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	statsRouter := chi.NewRouter()
	statsRouter.Use(middleware.Recovery(h.logger))
	statsRouter.Use(middleware.RequestID)
	statsRouter.Use(middleware.Logger(h.logger))
	statsRouter.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
	statsRouter.Get("/users/{user}", h.handleUserStats)

	r.Mount("/stats", statsRouter)
}

func (h *Handler) handleUserStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userRef := chi.URLParam(r, "user")
	if userRef == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "user is required"))
		return
	}

	report, err := h.source.Build(ctx, userRef, r.URL.Query().Get("course"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build stats report",
			"request_id", requestcontext.RequestID(ctx),
			"user", userRef,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build stats report"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.ErrorContext(ctx, "failed to write stats response",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}
