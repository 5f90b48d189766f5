package leave

import (
	"context"

	"github.com/jackc/pgx/v5"

	"elms/internal/platform/querier"
)

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

const requestViewColumns = `
    r.id, r.user_id, r.leave_type_id, r.start_date, r.end_date, r.duration_days, r.reason, r.status,
    COALESCE(r.approver_id::text, ''), COALESCE(r.rejection_reason, ''), r.decided_at, r.created_at,
    lt.name, u.first_name || ' ' || u.last_name, u.email, COALESCE(d.name, u.department_label)
`

const requestViewFrom = `
    FROM leave_requests r
    JOIN leave_types lt ON lt.id = r.leave_type_id
    JOIN users u ON u.id = r.user_id
    LEFT JOIN departments d ON d.id = u.department_id
`

func scanRequestView(row pgx.Row) (RequestView, error) {
	var v RequestView
	err := row.Scan(
		&v.ID, &v.UserID, &v.LeaveTypeID, &v.StartDate, &v.EndDate, &v.DurationDays, &v.Reason, &v.Status,
		&v.ApproverID, &v.RejectionReason, &v.DecidedAt, &v.CreatedAt,
		&v.LeaveTypeName, &v.EmployeeName, &v.EmployeeEmail, &v.Department,
	)
	if err != nil {
		return RequestView{}, err
	}
	v.StatusLabel = StatusLabel(v.Status)
	return v, nil
}

func collectRequestViews(rows pgx.Rows) ([]RequestView, error) {
	defer rows.Close()
	out := make([]RequestView, 0)
	for rows.Next() {
		v, err := scanRequestView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
