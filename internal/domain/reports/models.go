package reports

import "time"

// Subject identifies whose score a report describes.
type Subject struct {
	UserID     string
	Name       string
	Email      string
	Department string
	Position   string
}

type ExportFilter struct {
	Status string
	From   time.Time
	To     time.Time
}

type EmployeeDashboard struct {
	LeaveBalance    int `json:"leaveBalance"`
	PendingDays     int `json:"pendingDays"`
	PendingRequests int `json:"pendingRequests"`
}

type ManagerDashboard struct {
	PendingApprovals int `json:"pendingApprovals"`
	ApprovedThisYear int `json:"approvedThisYear"`
}

type HRDashboard struct {
	TotalEmployees  int `json:"totalEmployees"`
	LeavePending    int `json:"leavePending"`
	OnLeaveToday    int `json:"onLeaveToday"`
	UpcomingHoliday int `json:"upcomingHolidays"`
}
