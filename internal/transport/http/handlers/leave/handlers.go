package leavehandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/audit"
	"elms/internal/domain/auth"
	"elms/internal/domain/leave"
	"elms/internal/transport/http/api"
	"elms/internal/transport/http/middleware"
	"elms/internal/transport/http/shared"
)

const submitEndpoint = "leave.submit"

type Service interface {
	Submit(ctx context.Context, in leave.SubmitInput) (leave.Request, error)
	Decide(ctx context.Context, in leave.DecideInput) (leave.Request, error)
	ListTypes(ctx context.Context) ([]leave.LeaveType, error)
	CreateType(ctx context.Context, payload leave.LeaveType) (leave.LeaveType, error)
	ListHolidays(ctx context.Context) ([]leave.Holiday, error)
	UpcomingHolidays(ctx context.Context) ([]leave.Holiday, error)
	CreateHoliday(ctx context.Context, name string, date time.Time) (leave.Holiday, error)
	Balances(ctx context.Context, userID string, year int) ([]leave.Balance, error)
	PendingDays(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string) ([]leave.RequestView, error)
	ListPending(ctx context.Context) ([]leave.RequestView, error)
	ListAll(ctx context.Context, limit, offset int) (leave.RequestListResult, error)
	Recent(ctx context.Context) ([]leave.RequestView, error)
	GetRequest(ctx context.Context, requestID string) (leave.RequestView, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
	Idempotency middleware.IdempotencyStore
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor, idem middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/types", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermLeaveAdmin, h.Perms)).Post("/types", h.handleCreateType)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/holidays/upcoming", h.handleUpcomingHolidays)
		r.With(middleware.RequirePermission(auth.PermLeaveAdmin, h.Perms)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleBalances)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/pending-days", h.handlePendingDays)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/history", h.handleHistory)
		r.Route("/requests", func(r chi.Router) {
			r.With(
				middleware.RequirePermission(auth.PermLeaveWrite, h.Perms),
				middleware.Idempotent(h.Idempotency, submitEndpoint),
			).Post("/", h.handleSubmit)
			r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/", h.handleListAll)
			r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/pending", h.handleListPending)
			r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/recent", h.handleRecent)
			r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/{requestID}", h.handleGetRequest)
			r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Patch("/{requestID}/status", h.handleDecide)
		})
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		api.FailError(w, err, "leave_types_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

type createTypeRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	AllowedDays      *int   `json:"allowedDays"`
	RequiresApproval *bool  `json:"requiresApproval"`
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createTypeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if payload.AllowedDays == nil {
		v.Add("allowedDays", "is required")
	} else if *payload.AllowedDays < 0 {
		v.Add("allowedDays", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	requiresApproval := true
	if payload.RequiresApproval != nil {
		requiresApproval = *payload.RequiresApproval
	}
	created, err := h.Service.CreateType(r.Context(), leave.LeaveType{
		Name:             payload.Name,
		Description:      payload.Description,
		AllowedDays:      *payload.AllowedDays,
		RequiresApproval: requiresApproval,
	})
	if err != nil {
		api.FailError(w, err, "leave_type_create_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionCreate, "leave_type", created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.ListHolidays(r.Context())
	if err != nil {
		api.FailError(w, err, "holiday_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpcomingHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.UpcomingHolidays(r.Context())
	if err != nil {
		api.FailError(w, err, "holiday_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type createHolidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createHolidayRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, requestID) {
		return
	}

	holiday, err := h.Service.CreateHoliday(r.Context(), payload.Name, date)
	if err != nil {
		api.FailError(w, err, "holiday_create_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionCreate, "holiday", holiday.ID, nil, holiday)
	api.Created(w, holiday, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	year := v.Year("year", r.URL.Query().Get("year"))
	if v.Reject(w, requestID) {
		return
	}

	balances, err := h.Service.Balances(r.Context(), user.UserID, year)
	if err != nil {
		api.FailError(w, err, "leave_balances_failed", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handlePendingDays(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	days, err := h.Service.PendingDays(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, "pending_days_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]int{"totalPendingDays": days}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	history, err := h.Service.History(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, "leave_history_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

type submitRequest struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// handleSubmit only checks shape; range and overlap rules belong to the lifecycle.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailError(w, asPayloadError(err), "invalid_payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "is required")
	v.Required("reason", payload.Reason, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	if v.Reject(w, requestID) {
		return
	}

	req, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		UserID:        user.UserID,
		LeaveTypeName: strings.TrimSpace(payload.LeaveType),
		StartDate:     start,
		EndDate:       end,
		Reason:        strings.TrimSpace(payload.Reason),
	})
	if err != nil {
		api.FailError(w, err, "leave_submit_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionSubmit, "leave_request", req.ID, nil, req)
	api.Created(w, req, requestID)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromQuery(r, 50, 200)
	result, err := h.Service.ListAll(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, "leave_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items":  result.Requests,
		"total":  result.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.ListPending(r.Context())
	if err != nil {
		api.FailError(w, err, "leave_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, pending, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := h.Service.Recent(r.Context())
	if err != nil {
		api.FailError(w, err, "leave_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, recent, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leaveRequestID := chi.URLParam(r, "requestID")
	if !shared.ValidID(leaveRequestID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid request id", requestID)
		return
	}

	req, err := h.Service.GetRequest(r.Context(), leaveRequestID)
	if err != nil {
		api.FailError(w, err, "leave_fetch_failed", requestID)
		return
	}
	if req.UserID != user.UserID {
		allowed, err := h.Perms.HasPermission(r.Context(), user.RoleName, auth.PermLeaveApprove)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			return
		}
		if !allowed {
			api.FailError(w, leave.ErrRequestNotFound, "leave_fetch_failed", requestID)
			return
		}
	}
	api.Success(w, req, requestID)
}

type decideRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leaveRequestID := chi.URLParam(r, "requestID")
	if !shared.ValidID(leaveRequestID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid request id", requestID)
		return
	}

	var payload decideRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailError(w, asPayloadError(err), "invalid_payload", requestID)
		return
	}

	req, err := h.Service.Decide(r.Context(), leave.DecideInput{
		RequestID:       leaveRequestID,
		Decision:        payload.Status,
		ApproverID:      user.UserID,
		RejectionReason: payload.RejectionReason,
	})
	if err != nil {
		api.FailError(w, err, "leave_decide_failed", requestID)
		return
	}

	action := audit.ActionApprove
	if req.Status == leave.StatusRejected {
		action = audit.ActionReject
	}
	shared.RecordAudit(r, h.Audit, user.UserID, action, "leave_request", req.ID, nil, req)
	api.Success(w, req, requestID)
}
