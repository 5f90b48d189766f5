package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"elms/internal/platform/querier"
)

func (s *Store) ListTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, allowed_days, requires_approval, created_at
    FROM leave_types
    ORDER BY name
  `)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	defer rows.Close()

	types := make([]LeaveType, 0)
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.AllowedDays, &t.RequiresApproval, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, payload LeaveType) (LeaveType, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, description, allowed_days, requires_approval)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at
  `, payload.Name, payload.Description, payload.AllowedDays, payload.RequiresApproval).Scan(&payload.ID, &payload.CreatedAt)
	if querier.IsUniqueViolation(err) {
		return LeaveType{}, ErrLeaveTypeExists
	}
	if err != nil {
		return LeaveType{}, fmt.Errorf("create leave type: %w", err)
	}
	return payload, nil
}

func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, date
    FROM holidays
    ORDER BY date
  `)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return collectHolidays(rows)
}

func (s *Store) UpcomingHolidays(ctx context.Context, from time.Time, limit int) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, date
    FROM holidays
    WHERE date >= $1
    ORDER BY date
    LIMIT $2
  `, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming holidays: %w", err)
	}
	return collectHolidays(rows)
}

func collectHolidays(rows pgx.Rows) ([]Holiday, error) {
	defer rows.Close()
	out := make([]Holiday, 0)
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, name string, date time.Time) (Holiday, error) {
	h := Holiday{Name: name, Date: date}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, date)
    VALUES ($1,$2)
    RETURNING id
  `, name, date).Scan(&h.ID)
	if querier.IsUniqueViolation(err) {
		return Holiday{}, ErrHolidayExists
	}
	if err != nil {
		return Holiday{}, fmt.Errorf("create holiday: %w", err)
	}
	return h, nil
}

func (s *Store) ListBalances(ctx context.Context, userID string, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT lt.id, lt.name, b.year, b.balance, lt.allowed_days
    FROM leave_balances b
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE b.user_id = $1 AND b.year = $2
    ORDER BY lt.name
  `, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	out := make([]Balance, 0)
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.LeaveTypeID, &b.LeaveTypeName, &b.Year, &b.Remaining, &b.AllowedDays); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) PendingDays(ctx context.Context, userID string) (int, error) {
	var days int
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(end_date - start_date + 1), 0)
    FROM leave_requests
    WHERE user_id = $1 AND status = $2
  `, userID, StatusPending).Scan(&days); err != nil {
		return 0, fmt.Errorf("sum pending days: %w", err)
	}
	return days, nil
}

func (s *Store) History(ctx context.Context, userID string) ([]RequestView, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+requestViewColumns+requestViewFrom+`
    WHERE r.user_id = $1
    ORDER BY r.created_at DESC
  `, userID)
	if err != nil {
		return nil, fmt.Errorf("list leave history: %w", err)
	}
	return collectRequestViews(rows)
}

func (s *Store) ListPending(ctx context.Context) ([]RequestView, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+requestViewColumns+requestViewFrom+`
    WHERE r.status = $1
    ORDER BY r.created_at
  `, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return collectRequestViews(rows)
}

func (s *Store) ListAll(ctx context.Context, limit, offset int) (RequestListResult, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests").Scan(&total); err != nil {
		return RequestListResult{}, fmt.Errorf("count requests: %w", err)
	}

	rows, err := s.DB.Query(ctx, `SELECT `+requestViewColumns+requestViewFrom+`
    ORDER BY r.start_date DESC, r.created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return RequestListResult{}, fmt.Errorf("list requests: %w", err)
	}
	views, err := collectRequestViews(rows)
	if err != nil {
		return RequestListResult{}, err
	}
	return RequestListResult{Requests: views, Total: total}, nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]RequestView, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+requestViewColumns+requestViewFrom+`
    ORDER BY r.created_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	return collectRequestViews(rows)
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (RequestView, error) {
	v, err := scanRequestView(s.DB.QueryRow(ctx, `SELECT `+requestViewColumns+requestViewFrom+`
    WHERE r.id = $1
  `, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return RequestView{}, ErrRequestNotFound
	}
	if err != nil {
		return RequestView{}, fmt.Errorf("get request: %w", err)
	}
	return v, nil
}
