package reportshandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/auth"
	"elms/internal/domain/leave"
	"elms/internal/domain/reports"
	"elms/internal/platform/logger"
	"elms/internal/transport/http/api"
	"elms/internal/transport/http/middleware"
	"elms/internal/transport/http/shared"
)

type Service interface {
	ScorePDF(ctx context.Context, w io.Writer, userID string) error
	RequestsCSV(ctx context.Context, w io.Writer, filter reports.ExportFilter) error
	Dashboard(ctx context.Context, user auth.UserContext) (any, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermScoreSelf, h.Perms)).Get("/score/me.pdf", h.handleSelfScorePDF)
		r.With(middleware.RequirePermission(auth.PermScoreAny, h.Perms)).Get("/score/{userID}.pdf", h.handleScorePDF)
		r.With(middleware.RequirePermission(auth.PermLeaveAdmin, h.Perms)).Get("/leave-requests.csv", h.handleRequestsCSV)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	data, err := h.Service.Dashboard(r.Context(), user)
	if err != nil {
		api.FailError(w, err, "dashboard_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, data, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSelfScorePDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.writePDF(w, r, user.UserID)
}

func (h *Handler) handleScorePDF(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !shared.ValidID(userID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	h.writePDF(w, r, userID)
}

// writePDF renders into memory first so failures still produce a JSON error.
func (h *Handler) writePDF(w http.ResponseWriter, r *http.Request, userID string) {
	var buf bytes.Buffer
	if err := h.Service.ScorePDF(r.Context(), &buf, userID); err != nil {
		api.FailError(w, err, "score_pdf_failed", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=score-%s.pdf", userID))
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Sugar().Warnw("score pdf write failed", "err", err)
	}
}

func (h *Handler) handleRequestsCSV(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	status := strings.ToLower(strings.TrimSpace(query.Get("status")))
	v.Enum("status", status, []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected}, "must be pending, approved or rejected")
	filter := reports.ExportFilter{Status: status}
	if raw := query.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, requestID) {
		return
	}

	var buf bytes.Buffer
	if err := h.Service.RequestsCSV(r.Context(), &buf, filter); err != nil {
		api.FailError(w, err, "leave_export_failed", requestID)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=leave-requests.csv")
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Sugar().Warnw("leave export write failed", "err", err)
	}
}
