package reports

import (
	"context"
	"fmt"
	"time"

	"elms/internal/domain/leave"
	"elms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ExportRequests(ctx context.Context, filter ExportFilter) ([]leave.RequestView, error) {
	query := `
    SELECT r.id, u.first_name || ' ' || u.last_name, u.email, COALESCE(d.name, u.department_label), lt.name,
           r.start_date, r.end_date, r.duration_days, r.status,
           COALESCE(r.approver_id::text, ''), COALESCE(r.rejection_reason, ''), r.created_at
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    JOIN leave_types lt ON lt.id = r.leave_type_id
    LEFT JOIN departments d ON d.id = u.department_id
    WHERE 1=1
  `
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND r.end_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND r.start_date <= $%d", len(args))
	}
	query += " ORDER BY r.start_date, r.created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("export requests: %w", err)
	}
	defer rows.Close()

	out := make([]leave.RequestView, 0)
	for rows.Next() {
		var r leave.RequestView
		if err := rows.Scan(&r.ID, &r.EmployeeName, &r.EmployeeEmail, &r.Department, &r.LeaveTypeName,
			&r.StartDate, &r.EndDate, &r.DurationDays, &r.Status, &r.ApproverID, &r.RejectionReason, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeDashboard(ctx context.Context, userID string, year int) (EmployeeDashboard, error) {
	var out EmployeeDashboard
	err := s.DB.QueryRow(ctx, `
    SELECT
      COALESCE((SELECT SUM(balance) FROM leave_balances WHERE user_id = $1 AND year = $2), 0),
      COALESCE((SELECT SUM(end_date - start_date + 1) FROM leave_requests WHERE user_id = $1 AND status = $3), 0),
      (SELECT COUNT(1) FROM leave_requests WHERE user_id = $1 AND status = $3)
  `, userID, year, leave.StatusPending).Scan(&out.LeaveBalance, &out.PendingDays, &out.PendingRequests)
	return out, err
}

func (s *Store) ManagerDashboard(ctx context.Context, managerID string, year int) (ManagerDashboard, error) {
	var out ManagerDashboard
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM leave_requests WHERE status = $1),
      (SELECT COUNT(1) FROM leave_requests WHERE approver_id = $2 AND status = $3 AND EXTRACT(YEAR FROM start_date) = $4)
  `, leave.StatusPending, managerID, leave.StatusApproved, year).Scan(&out.PendingApprovals, &out.ApprovedThisYear)
	return out, err
}

func (s *Store) HRDashboard(ctx context.Context, today time.Time) (HRDashboard, error) {
	var out HRDashboard
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM users WHERE role = 'employee'),
      (SELECT COUNT(1) FROM leave_requests WHERE status = $1),
      (SELECT COUNT(DISTINCT user_id) FROM leave_requests WHERE status = $2 AND start_date <= $3 AND end_date >= $3),
      (SELECT COUNT(1) FROM holidays WHERE date >= $3)
  `, leave.StatusPending, leave.StatusApproved, today).Scan(&out.TotalEmployees, &out.LeavePending, &out.OnLeaveToday, &out.UpcomingHoliday)
	return out, err
}
