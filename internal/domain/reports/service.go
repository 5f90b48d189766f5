package reports

import (
	"context"
	"io"
	"time"

	"elms/internal/domain/auth"
	"elms/internal/domain/core"
	"elms/internal/domain/leave"
	"elms/internal/domain/scoring"
)

type StoreAPI interface {
	ExportRequests(ctx context.Context, filter ExportFilter) ([]leave.RequestView, error)
	EmployeeDashboard(ctx context.Context, userID string, year int) (EmployeeDashboard, error)
	ManagerDashboard(ctx context.Context, managerID string, year int) (ManagerDashboard, error)
	HRDashboard(ctx context.Context, today time.Time) (HRDashboard, error)
}

type EmployeeLookup interface {
	GetEmployee(ctx context.Context, userID string) (core.Employee, error)
}

type Scorer interface {
	Score(ctx context.Context, userID string, debug bool) (scoring.Report, error)
}

type Service struct {
	Store     StoreAPI
	Employees EmployeeLookup
	Scores    Scorer
	Now       func() time.Time
}

func NewService(store StoreAPI, employees EmployeeLookup, scores Scorer) *Service {
	return &Service{Store: store, Employees: employees, Scores: scores, Now: time.Now}
}

func (s *Service) ScorePDF(ctx context.Context, w io.Writer, userID string) error {
	emp, err := s.Employees.GetEmployee(ctx, userID)
	if err != nil {
		return err
	}
	report, err := s.Scores.Score(ctx, userID, false)
	if err != nil {
		return err
	}
	return WriteScorePDF(w, Subject{
		UserID:     emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		Position:   emp.Position,
	}, report)
}

func (s *Service) RequestsCSV(ctx context.Context, w io.Writer, filter ExportFilter) error {
	rows, err := s.Store.ExportRequests(ctx, filter)
	if err != nil {
		return err
	}
	return WriteRequestsCSV(w, rows)
}

// Dashboard returns the counters matching the caller's role.
func (s *Service) Dashboard(ctx context.Context, user auth.UserContext) (any, error) {
	now := s.Now()
	switch user.RoleName {
	case auth.RoleHR, auth.RoleAdmin:
		return s.Store.HRDashboard(ctx, leave.DateOnly(now))
	case auth.RoleManager:
		return s.Store.ManagerDashboard(ctx, user.UserID, now.Year())
	default:
		return s.Store.EmployeeDashboard(ctx, user.UserID, now.Year())
	}
}
