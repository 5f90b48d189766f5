package scoring

import "time"

const (
	MaxDiscipline = 30
	MaxUsage      = 20
	MaxTimeliness = 15
	MaxPending    = 10
	MaxOverlap    = 10
	MaxTenure     = 15
)

// RequestFact is the part of a leave request the score looks at.
type RequestFact struct {
	Status       string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	CreatedAt    time.Time
}

type Input struct {
	Requests     []RequestFact
	BalanceTotal int
	JoinedAt     time.Time
	AsOf         time.Time
}

type Component struct {
	Score   float64 `json:"score"`
	Max     int     `json:"max"`
	Percent int     `json:"percent"`
}

type Components struct {
	Discipline Component `json:"discipline"`
	Usage      Component `json:"usage"`
	Timeliness Component `json:"timeliness"`
	Pending    Component `json:"pending"`
	Overlap    Component `json:"overlap"`
	Tenure     Component `json:"tenure"`
}

type Debug struct {
	TotalRequests    int     `json:"totalRequests"`
	ApprovedRequests int     `json:"approvedRequests"`
	RejectedRequests int     `json:"rejectedRequests"`
	PendingRequests  int     `json:"pendingRequests"`
	UsedDays         int     `json:"usedDays"`
	AllowedDays      int     `json:"allowedDays"`
	UsedRatio        float64 `json:"usedRatio"`
	TimelyCount      int     `json:"timelyCount"`
	TimelyRatio      float64 `json:"timelyRatio"`
	OverlappingPairs int     `json:"overlappingPairs"`
	YearsOfService   float64 `json:"yearsOfService"`
}

type Report struct {
	UserID       string     `json:"userId"`
	OverallScore float64    `json:"overallScore"`
	Components   Components `json:"components"`
	Debug        *Debug     `json:"debug,omitempty"`
	ComputedAt   time.Time  `json:"computedAt"`
}
