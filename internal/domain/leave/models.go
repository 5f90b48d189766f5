package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type LeaveType struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	AllowedDays      int       `json:"allowedDays"`
	RequiresApproval bool      `json:"requiresApproval"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Request struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	LeaveTypeID     string     `json:"leaveTypeId"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	DurationDays    int        `json:"durationDays"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApproverID      string     `json:"approverId,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// RequestView is a request joined with the names a reader needs.
type RequestView struct {
	Request
	LeaveTypeName string `json:"leaveTypeName"`
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
	Department    string `json:"department"`
	StatusLabel   string `json:"statusLabel"`
}

type Balance struct {
	LeaveTypeID   string `json:"leaveTypeId"`
	LeaveTypeName string `json:"leaveTypeName"`
	Year          int    `json:"year"`
	Remaining     int    `json:"remaining"`
	AllowedDays   int    `json:"allowedDays"`
}

type Holiday struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type SubmitInput struct {
	UserID        string
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
}

type DecideInput struct {
	RequestID       string
	Decision        string
	ApproverID      string
	RejectionReason string
}

type RequestListResult struct {
	Requests []RequestView
	Total    int
}
