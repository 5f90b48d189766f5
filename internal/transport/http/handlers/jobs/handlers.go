package jobshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/audit"
	"elms/internal/domain/auth"
	"elms/internal/platform/jobs"
	"elms/internal/transport/http/api"
	"elms/internal/transport/http/middleware"
	"elms/internal/transport/http/shared"
)

type Runner interface {
	RunRollover(ctx context.Context) (any, error)
	ListRuns(ctx context.Context, limit int) ([]jobs.Run, error)
}

type Handler struct {
	Jobs  Runner
	Perms middleware.PermissionStore
	Audit shared.Auditor
}

func NewHandler(runner Runner, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Jobs: runner, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun, h.Perms))
		r.Post("/rollover/run", h.handleRunRollover)
		r.Get("/runs", h.handleListRuns)
	})
}

func (h *Handler) handleRunRollover(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	details, err := h.Jobs.RunRollover(r.Context())
	if err != nil {
		api.FailError(w, err, "rollover_failed", middleware.GetRequestID(r.Context()))
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionRun, "job", jobs.JobBalanceRollover, nil, details)
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromQuery(r, 20, 100)
	runs, err := h.Jobs.ListRuns(r.Context(), page.Limit)
	if err != nil {
		api.FailError(w, err, "job_runs_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}
