package leave

import (
	"context"
	"time"
)

type RolloverSummary struct {
	Year            int `json:"year"`
	UsersCovered    int `json:"usersCovered"`
	BalancesCreated int `json:"balancesCreated"`
}

// ApplyRollover makes sure every user holds a balance row for every leave
// type in the year of now. Existing rows are left untouched.
func ApplyRollover(ctx context.Context, store RolloverStore, now time.Time) (RolloverSummary, error) {
	summary := RolloverSummary{Year: now.Year()}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return summary, err
	}

	users, err := store.CountUsersTx(ctx, tx)
	if err != nil {
		return summary, rollback(ctx, tx, "rollover", err)
	}
	created, err := store.EnsureYearBalancesTx(ctx, tx, summary.Year)
	if err != nil {
		return summary, rollback(ctx, tx, "rollover", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return summary, err
	}

	summary.UsersCovered = users
	summary.BalancesCreated = created
	return summary, nil
}
