package core

import "elms/internal/domain/apperr"

var (
	ErrEmailExists        = apperr.Conflict("email_exists", "a user with this email already exists")
	ErrEmployeeNotFound   = apperr.NotFound("employee_not_found", "employee not found")
	ErrNameRequired       = apperr.Validation("name_required", "name is required")
	ErrEmailRequired      = apperr.Validation("email_required", "email is required")
	ErrPasswordRequired   = apperr.Validation("password_required", "password is required")
	ErrPasswordTooLong    = apperr.Validation("password_too_long", "password must be at most 72 bytes")
	ErrDepartmentRequired = apperr.Validation("department_required", "department name and manager are required")
	ErrDepartmentExists   = apperr.Conflict("department_exists", "department already exists")
	ErrManagerNotFound    = apperr.Validation("manager_not_found", "manager does not exist")
	ErrInvalidManager     = apperr.Validation("invalid_manager", "user cannot manage a department")
)
