package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/core"
)

// RecurringProcessor materializes due recurring transaction templates into
// concrete transactions. Materialized entries go through LedgerService so
// the totals-sync invariant holds for them like for any other write.
type RecurringProcessor struct {
	recurring RecurringStore
	ledger    *LedgerService
}

func NewRecurringProcessor(recurring RecurringStore, ledger *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{
		recurring: recurring,
		ledger:    ledger,
	}
}

// ProcessDue materializes every recurring template that is due at now and
// returns how many transactions were created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.recurring == nil || p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.recurring.ListRecurringTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, tpl := range templates {
		tx := tpl.Transaction

		if !tpl.Transaction.RecurrenceEndDate.IsEmpty() &&
			core.DateOf(now).After(tpl.Transaction.RecurrenceEndDate) {
			continue
		}

		checker, err := GetDuenessChecker(tx.RecurrencePattern)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with bad pattern",
				"id", tx.ID,
				"pattern", tx.RecurrencePattern,
				"error", err)
			continue
		}

		if !checker.IsDue(tpl.LastExecution, now, tx.OccursOn) {
			continue
		}

		materialized := core.Transaction{
			Kind:        tx.Kind,
			Category:    tx.Category,
			Amount:      tx.Amount,
			Description: tx.Description,
			OccursOn:    core.DateOf(now),
			Notes:       tx.Notes,
			Tags:        tx.Tags,
		}

		if _, err := p.ledger.Create(ctx, tx.OwnerID, materialized); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"template_id", tx.ID,
				"description", tx.Description,
				"error", err)
			continue
		}

		if err := p.recurring.MarkRecurringExecuted(ctx, tx.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"template_id", tx.ID,
				"error", err)
			// Continue anyway - the transaction was created successfully
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"template_id", tx.ID,
			"owner_id", tx.OwnerID,
			"description", tx.Description,
			"amount_cents", tx.Amount.Cents,
			"pattern", tx.RecurrencePattern)
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processedCount,
		"total_checked", len(templates))

	return processedCount, nil
}
