package services

import (
	"context"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// Ports for the durable store. storage.SQLiteRepository satisfies all of
// them; tests plug in in-memory fakes.
type (
	LedgerStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, ownerID, id int64) error
	}

	GoalStore interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error)
		ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, ownerID, id int64) error
	}

	TotalsStore interface {
		GetTotals(ctx context.Context, ownerID int64) (core.Totals, error)
		SetTotals(ctx context.Context, ownerID int64, t core.Totals) error
	}

	// RecurringStore exposes recurring templates and their materialization
	// bookkeeping for the recurring worker.
	RecurringStore interface {
		ListRecurringTransactions(ctx context.Context) ([]storage.RecurringTransaction, error)
		MarkRecurringExecuted(ctx context.Context, id int64, executedOn time.Time) error
	}
)

var (
	_ LedgerStore    = (*storage.SQLiteRepository)(nil)
	_ GoalStore      = (*storage.SQLiteRepository)(nil)
	_ TotalsStore    = (*storage.SQLiteRepository)(nil)
	_ RecurringStore = (*storage.SQLiteRepository)(nil)
)
