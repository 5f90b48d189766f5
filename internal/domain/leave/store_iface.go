package leave

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	ListTypes(ctx context.Context) ([]LeaveType, error)
	CreateType(ctx context.Context, payload LeaveType) (LeaveType, error)
	ListHolidays(ctx context.Context) ([]Holiday, error)
	UpcomingHolidays(ctx context.Context, from time.Time, limit int) ([]Holiday, error)
	CreateHoliday(ctx context.Context, name string, date time.Time) (Holiday, error)
	ListBalances(ctx context.Context, userID string, year int) ([]Balance, error)
	PendingDays(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string) ([]RequestView, error)
	ListPending(ctx context.Context) ([]RequestView, error)
	ListAll(ctx context.Context, limit, offset int) (RequestListResult, error)
	Recent(ctx context.Context, limit int) ([]RequestView, error)
	GetRequest(ctx context.Context, requestID string) (RequestView, error)
}

// LifecycleStore holds the row-locking primitives submit and decide are built from.
type LifecycleStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	LeaveTypeByNameTx(ctx context.Context, tx pgx.Tx, name string) (LeaveType, error)
	LockUserTx(ctx context.Context, tx pgx.Tx, userID string) error
	ActiveRangesTx(ctx context.Context, tx pgx.Tx, userID string, start, end time.Time) (int, error)
	InsertRequestTx(ctx context.Context, tx pgx.Tx, req Request) (Request, error)
	LockRequestTx(ctx context.Context, tx pgx.Tx, requestID string) (Request, error)
	LockBalanceTx(ctx context.Context, tx pgx.Tx, userID, leaveTypeID string, year int) (string, int, error)
	DecrementBalanceTx(ctx context.Context, tx pgx.Tx, balanceID string, days int) (bool, error)
	ApplyDecisionTx(ctx context.Context, tx pgx.Tx, req Request) error
}

type RolloverStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CountUsersTx(ctx context.Context, tx pgx.Tx) (int, error)
	EnsureYearBalancesTx(ctx context.Context, tx pgx.Tx, year int) (int, error)
}
