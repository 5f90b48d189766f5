package core

import "time"

// Employee is the read projection of a user row.
type Employee struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Department    string    `json:"department"`
	Position      string    `json:"position"`
	DateOfJoining time.Time `json:"dateOfJoining"`
	LeaveBalance  int       `json:"leaveBalance"`
}

type ManagerRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Department struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Manager   *ManagerRef `json:"manager"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Manager struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Summary struct {
	TotalEmployees     int `json:"totalEmployees"`
	TotalLeaveRequests int `json:"totalLeaveRequests"`
}

type CreateEmployeeInput struct {
	Name       string
	Email      string
	Department string
	Position   string
}

// UpdateEmployeeInput carries optional changes; nil fields are left as they are.
type UpdateEmployeeInput struct {
	Name       *string
	Email      *string
	Department *string
	Position   *string
}

type CreateManagerInput struct {
	Name     string
	Email    string
	Password string
}

type CreateDepartmentInput struct {
	Name      string
	ManagerID string
}

// NewUser is the row written when provisioning any account.
type NewUser struct {
	Username      string
	Email         string
	PasswordHash  string
	Role          string
	FirstName     string
	LastName      string
	Department    string
	Position      string
	DateOfJoining time.Time
}

type CreatedEmployee struct {
	Employee        Employee `json:"employee"`
	BalancesCreated int      `json:"balancesCreated"`
}
