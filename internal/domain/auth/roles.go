package auth

import (
	"context"
	"slices"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

var Roles = []string{RoleEmployee, RoleManager, RoleHR, RoleAdmin}

const (
	PermOrgRead        = "org.read"
	PermOrgWrite       = "org.write"
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermLeaveRead      = "leave.read"
	PermLeaveWrite     = "leave.write"
	PermLeaveApprove   = "leave.approve"
	PermLeaveAdmin     = "leave.admin"
	PermScoreSelf      = "score.read.self"
	PermScoreAny       = "score.read.any"
	PermAuditRead      = "audit.read"
	PermJobsRun        = "jobs.run"
)

var DefaultPermissions = []string{
	PermOrgRead,
	PermOrgWrite,
	PermEmployeesRead,
	PermEmployeesWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermLeaveAdmin,
	PermScoreSelf,
	PermScoreAny,
	PermAuditRead,
	PermJobsRun,
}

var employeePermissions = []string{
	PermOrgRead,
	PermLeaveRead,
	PermLeaveWrite,
	PermScoreSelf,
}

var managerPermissions = append(slices.Clone(employeePermissions),
	PermLeaveApprove,
	PermScoreAny,
	PermEmployeesRead,
)

var hrPermissions = append(slices.Clone(managerPermissions),
	PermEmployeesWrite,
	PermOrgWrite,
	PermLeaveAdmin,
	PermAuditRead,
	PermJobsRun,
)

var RolePermissions = map[string][]string{
	RoleEmployee: employeePermissions,
	RoleManager:  managerPermissions,
	RoleHR:       hrPermissions,
	RoleAdmin:    DefaultPermissions,
}

func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// CanApprove reports whether role may decide leave requests.
func CanApprove(role string) bool {
	return Allowed(role, PermLeaveApprove)
}

func Allowed(role, permission string) bool {
	return slices.Contains(RolePermissions[role], permission)
}

// StaticPermissions resolves permissions from the compiled role table.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return Allowed(role, permission), nil
}
