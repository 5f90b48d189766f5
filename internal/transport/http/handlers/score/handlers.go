package scorehandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/auth"
	"elms/internal/domain/scoring"
	"elms/internal/transport/http/api"
	"elms/internal/transport/http/middleware"
	"elms/internal/transport/http/shared"
)

type Scorer interface {
	Score(ctx context.Context, userID string, debug bool) (scoring.Report, error)
}

type Handler struct {
	Service Scorer
	Perms   middleware.PermissionStore
}

func NewHandler(service Scorer, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/score", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermScoreSelf, h.Perms)).Get("/me", h.handleSelf)
		r.With(middleware.RequirePermission(auth.PermScoreAny, h.Perms)).Get("/{userID}", h.handleUser)
	})
}

func debugRequested(r *http.Request) bool {
	debug, _ := strconv.ParseBool(r.URL.Query().Get("debug"))
	return debug
}

func (h *Handler) handleSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.writeScore(w, r, user.UserID)
}

func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !shared.ValidID(userID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	h.writeScore(w, r, userID)
}

func (h *Handler) writeScore(w http.ResponseWriter, r *http.Request, userID string) {
	report, err := h.Service.Score(r.Context(), userID, debugRequested(r))
	if err != nil {
		api.FailError(w, err, "score_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}
