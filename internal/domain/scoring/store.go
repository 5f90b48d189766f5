package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"elms/internal/domain/apperr"
	"elms/internal/platform/querier"
)

var ErrUserNotFound = apperr.NotFound("user_not_found", "user not found")

// Facts is a user's scoring input without the evaluation time.
type Facts struct {
	Requests     []RequestFact
	BalanceTotal int
	JoinedAt     time.Time
}

type Source interface {
	Facts(ctx context.Context, userID string) (Facts, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Facts(ctx context.Context, userID string) (Facts, error) {
	var out Facts
	err := s.DB.QueryRow(ctx, "SELECT date_of_joining FROM users WHERE id = $1", userID).Scan(&out.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Facts{}, ErrUserNotFound
	}
	if err != nil {
		return Facts{}, fmt.Errorf("load join date: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT status, start_date, end_date, duration_days, created_at
    FROM leave_requests
    WHERE user_id = $1
    ORDER BY start_date
  `, userID)
	if err != nil {
		return Facts{}, fmt.Errorf("load leave requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f RequestFact
		if err := rows.Scan(&f.Status, &f.StartDate, &f.EndDate, &f.DurationDays, &f.CreatedAt); err != nil {
			return Facts{}, err
		}
		out.Requests = append(out.Requests, f)
	}
	if err := rows.Err(); err != nil {
		return Facts{}, err
	}

	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(balance), 0)
    FROM leave_balances
    WHERE user_id = $1
  `, userID).Scan(&out.BalanceTotal); err != nil {
		return Facts{}, fmt.Errorf("sum balances: %w", err)
	}
	return out, nil
}
