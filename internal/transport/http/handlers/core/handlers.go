package corehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elms/internal/domain/audit"
	"elms/internal/domain/auth"
	"elms/internal/domain/core"
	"elms/internal/transport/http/api"
	"elms/internal/transport/http/middleware"
	"elms/internal/transport/http/shared"
)

type Service interface {
	CreateEmployee(ctx context.Context, in core.CreateEmployeeInput) (core.CreatedEmployee, error)
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	GetEmployee(ctx context.Context, userID string) (core.Employee, error)
	UpdateEmployee(ctx context.Context, userID string, in core.UpdateEmployeeInput) (core.Employee, error)
	Summary(ctx context.Context) (core.Summary, error)
	CreateManager(ctx context.Context, in core.CreateManagerInput) (core.Manager, error)
	ListManagers(ctx context.Context) ([]core.Manager, error)
	ListDepartments(ctx context.Context) ([]core.Department, error)
	CreateDepartment(ctx context.Context, in core.CreateDepartmentInput) (core.Department, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequireUser).Get("/me", h.handleMe)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequireUser).Get("/", h.handleGetEmployee)
			r.With(middleware.RequireUser).Put("/", h.handleUpdateEmployee)
		})
	})
	r.Route("/managers", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListManagers)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateManager)
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/", h.handleCreateDepartment)
	})
}

// canAccess lets a user reach their own record and holders of perm reach anyone's.
func (h *Handler) canAccess(r *http.Request, user auth.UserContext, targetID, perm string) (bool, error) {
	if user.UserID == targetID {
		return true, nil
	}
	return h.Perms.HasPermission(r.Context(), user.RoleName, perm)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, "employee_fetch_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		api.FailError(w, err, "employee_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		api.FailError(w, err, "employee_summary_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !shared.ValidID(employeeID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", requestID)
		return
	}

	allowed, err := h.canAccess(r, user, employeeID, auth.PermEmployeesRead)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	emp, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, "employee_fetch_failed", requestID)
		return
	}
	api.Success(w, emp, requestID)
}

type createEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createEmployeeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.CreateEmployee(r.Context(), core.CreateEmployeeInput{
		Name:       payload.Name,
		Email:      payload.Email,
		Department: payload.Department,
		Position:   payload.Position,
	})
	if err != nil {
		api.FailError(w, err, "employee_create_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionCreate, "employee", created.Employee.ID, nil, created.Employee)
	api.Created(w, created, requestID)
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !shared.ValidID(employeeID) {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", requestID)
		return
	}

	allowed, err := h.canAccess(r, user, employeeID, auth.PermEmployeesWrite)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	var payload updateEmployeeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	if payload.Name != nil {
		v.Required("name", *payload.Name, "must not be blank")
	}
	if payload.Email != nil {
		v.Required("email", *payload.Email, "must not be blank")
		v.Email("email", *payload.Email)
	}
	if v.Reject(w, requestID) {
		return
	}

	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, "employee_update_failed", requestID)
		return
	}
	updated, err := h.Service.UpdateEmployee(r.Context(), employeeID, core.UpdateEmployeeInput{
		Name:       payload.Name,
		Email:      payload.Email,
		Department: payload.Department,
		Position:   payload.Position,
	})
	if err != nil {
		api.FailError(w, err, "employee_update_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionUpdate, "employee", employeeID, before, updated)
	api.Success(w, updated, requestID)
}

type createManagerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleCreateManager(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createManagerRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	manager, err := h.Service.CreateManager(r.Context(), core.CreateManagerInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		api.FailError(w, err, "manager_create_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionCreate, "manager", manager.ID, nil, manager)
	api.Created(w, manager, requestID)
}

func (h *Handler) handleListManagers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.Service.ListManagers(r.Context())
	if err != nil {
		api.FailError(w, err, "manager_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, managers, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		api.FailError(w, err, "department_list_failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

type createDepartmentRequest struct {
	Name      string `json:"name"`
	ManagerID string `json:"managerId"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createDepartmentRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.UUID("managerId", payload.ManagerID)
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.CreateDepartment(r.Context(), core.CreateDepartmentInput{
		Name:      payload.Name,
		ManagerID: payload.ManagerID,
	})
	if err != nil {
		api.FailError(w, err, "department_create_failed", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, user.UserID, audit.ActionCreate, "department", dept.ID, nil, dept)
	api.Created(w, dept, requestID)
}
