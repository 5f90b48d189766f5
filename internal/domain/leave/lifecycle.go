package leave

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"elms/internal/platform/logger"
)

// Lifecycle runs the transactional submit and decide flows.
type Lifecycle struct {
	Store LifecycleStore
	Now   func() time.Time
}

func NewLifecycle(store LifecycleStore) *Lifecycle {
	return &Lifecycle{Store: store, Now: time.Now}
}

func (l *Lifecycle) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	start, end := DateOnly(in.StartDate), DateOnly(in.EndDate)
	if start.After(end) {
		return Request{}, ErrInvalidRange
	}

	tx, err := l.Store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}

	leaveType, err := l.Store.LeaveTypeByNameTx(ctx, tx, strings.TrimSpace(in.LeaveTypeName))
	if err != nil {
		return Request{}, rollback(ctx, tx, "submit", err)
	}

	days, err := CalculateDays(start, end)
	if err != nil {
		return Request{}, rollback(ctx, tx, "submit", err)
	}
	if days > leaveType.AllowedDays {
		return Request{}, rollback(ctx, tx, "submit", ErrExceedsAllowance)
	}

	if err := l.Store.LockUserTx(ctx, tx, in.UserID); err != nil {
		return Request{}, rollback(ctx, tx, "submit", err)
	}
	overlapping, err := l.Store.ActiveRangesTx(ctx, tx, in.UserID, start, end)
	if err != nil {
		return Request{}, rollback(ctx, tx, "submit", err)
	}
	if overlapping > 0 {
		return Request{}, rollback(ctx, tx, "submit", ErrOverlappingRequest)
	}

	created, err := l.Store.InsertRequestTx(ctx, tx, Request{
		UserID:       in.UserID,
		LeaveTypeID:  leaveType.ID,
		StartDate:    start,
		EndDate:      end,
		DurationDays: days,
		Reason:       in.Reason,
		Status:       StatusPending,
	})
	if err != nil {
		return Request{}, rollback(ctx, tx, "submit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return created, nil
}

func (l *Lifecycle) Decide(ctx context.Context, in DecideInput) (Request, error) {
	if !ValidDecision(in.Decision) {
		return Request{}, ErrInvalidDecision
	}
	reason := strings.TrimSpace(in.RejectionReason)
	if in.Decision == StatusRejected && reason == "" {
		return Request{}, ErrRejectionReasonRequired
	}
	if in.Decision == StatusApproved && strings.TrimSpace(in.ApproverID) == "" {
		return Request{}, ErrApproverRequired
	}

	tx, err := l.Store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}

	req, err := l.Store.LockRequestTx(ctx, tx, in.RequestID)
	if err != nil {
		return Request{}, rollback(ctx, tx, "decide", err)
	}
	if req.Status != StatusPending {
		return Request{}, rollback(ctx, tx, "decide", ErrInvalidState)
	}

	days, err := CalculateDays(req.StartDate, req.EndDate)
	if err != nil {
		return Request{}, rollback(ctx, tx, "decide", err)
	}

	decidedAt := l.Now().UTC()
	req.DurationDays = days
	req.DecidedAt = &decidedAt

	if in.Decision == StatusApproved {
		balanceID, remaining, err := l.Store.LockBalanceTx(ctx, tx, req.UserID, req.LeaveTypeID, req.StartDate.Year())
		if err != nil {
			return Request{}, rollback(ctx, tx, "decide", err)
		}
		if remaining < days {
			return Request{}, rollback(ctx, tx, "decide", ErrInsufficientBalance)
		}
		ok, err := l.Store.DecrementBalanceTx(ctx, tx, balanceID, days)
		if err != nil {
			return Request{}, rollback(ctx, tx, "decide", err)
		}
		if !ok {
			return Request{}, rollback(ctx, tx, "decide", ErrInsufficientBalance)
		}
		req.Status = StatusApproved
		req.ApproverID = in.ApproverID
		req.RejectionReason = ""
	} else {
		req.Status = StatusRejected
		req.ApproverID = ""
		req.RejectionReason = reason
	}

	if err := l.Store.ApplyDecisionTx(ctx, tx, req); err != nil {
		return Request{}, rollback(ctx, tx, "decide", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return req, nil
}

func rollback(ctx context.Context, tx pgx.Tx, op string, cause error) error {
	if rbErr := tx.Rollback(ctx); rbErr != nil {
		logger.S().Warnw("leave rollback failed", "op", op, "err", rbErr)
	}
	return cause
}
