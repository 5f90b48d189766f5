package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) LeaveTypeByNameTx(ctx context.Context, tx pgx.Tx, name string) (LeaveType, error) {
	var t LeaveType
	err := tx.QueryRow(ctx, `
    SELECT id, name, description, allowed_days, requires_approval, created_at
    FROM leave_types
    WHERE name = $1
  `, name).Scan(&t.ID, &t.Name, &t.Description, &t.AllowedDays, &t.RequiresApproval, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, ErrUnknownLeaveType
	}
	if err != nil {
		return LeaveType{}, fmt.Errorf("lookup leave type: %w", err)
	}
	return t, nil
}

// LockUserTx serialises submissions of one user on the user's row.
func (s *Store) LockUserTx(ctx context.Context, tx pgx.Tx, userID string) error {
	var id string
	err := tx.QueryRow(ctx, "SELECT id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func (s *Store) ActiveRangesTx(ctx context.Context, tx pgx.Tx, userID string, start, end time.Time) (int, error) {
	var count int
	if err := tx.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE user_id = $1
      AND status IN ($2, $3)
      AND start_date <= $5
      AND end_date >= $4
  `, userID, StatusPending, StatusApproved, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("check overlapping requests: %w", err)
	}
	return count, nil
}

func (s *Store) InsertRequestTx(ctx context.Context, tx pgx.Tx, req Request) (Request, error) {
	if err := tx.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, leave_type_id, start_date, end_date, duration_days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at
  `, req.UserID, req.LeaveTypeID, req.StartDate, req.EndDate, req.DurationDays, req.Reason, req.Status).Scan(&req.ID, &req.CreatedAt); err != nil {
		return Request{}, fmt.Errorf("insert leave request: %w", err)
	}
	return req, nil
}

func (s *Store) LockRequestTx(ctx context.Context, tx pgx.Tx, requestID string) (Request, error) {
	var r Request
	err := tx.QueryRow(ctx, `
    SELECT id, user_id, leave_type_id, start_date, end_date, duration_days, reason, status,
           COALESCE(approver_id::text, ''), COALESCE(rejection_reason, ''), decided_at, created_at
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, requestID).Scan(&r.ID, &r.UserID, &r.LeaveTypeID, &r.StartDate, &r.EndDate, &r.DurationDays, &r.Reason, &r.Status,
		&r.ApproverID, &r.RejectionReason, &r.DecidedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("lock leave request: %w", err)
	}
	return r, nil
}

func (s *Store) LockBalanceTx(ctx context.Context, tx pgx.Tx, userID, leaveTypeID string, year int) (string, int, error) {
	var id string
	var remaining int
	err := tx.QueryRow(ctx, `
    SELECT id, balance
    FROM leave_balances
    WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
    FOR UPDATE
  `, userID, leaveTypeID, year).Scan(&id, &remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, ErrBalanceNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("lock leave balance: %w", err)
	}
	return id, remaining, nil
}

// DecrementBalanceTx subtracts days only while enough remain. It reports
// false when the guard rejected the update.
func (s *Store) DecrementBalanceTx(ctx context.Context, tx pgx.Tx, balanceID string, days int) (bool, error) {
	tag, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET balance = balance - $1, updated_at = now()
    WHERE id = $2 AND balance >= $1
  `, days, balanceID)
	if err != nil {
		return false, fmt.Errorf("decrement leave balance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ApplyDecisionTx(ctx context.Context, tx pgx.Tx, req Request) error {
	var approver, rejection any
	if req.ApproverID != "" {
		approver = req.ApproverID
	}
	if req.RejectionReason != "" {
		rejection = req.RejectionReason
	}
	if _, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approver_id = $2, rejection_reason = $3, decided_at = $4, duration_days = $5, updated_at = now()
    WHERE id = $6
  `, req.Status, approver, rejection, req.DecidedAt, req.DurationDays, req.ID); err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	return nil
}

func (s *Store) CountUsersTx(ctx context.Context, tx pgx.Tx) (int, error) {
	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// EnsureYearBalancesTx creates the missing balance rows of year for every
// user and leave type, seeded with the type's allowed days.
func (s *Store) EnsureYearBalancesTx(ctx context.Context, tx pgx.Tx, year int) (int, error) {
	tag, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, year, balance)
    SELECT u.id, lt.id, $1, lt.allowed_days
    FROM users u
    CROSS JOIN leave_types lt
    ON CONFLICT (user_id, leave_type_id, year) DO NOTHING
  `, year)
	if err != nil {
		return 0, fmt.Errorf("ensure balances for %d: %w", year, err)
	}
	return int(tag.RowsAffected()), nil
}
