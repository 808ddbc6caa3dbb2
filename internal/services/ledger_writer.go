package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
)

// LedgerService applies transaction mutations and keeps the owner's cached
// totals consistent with the full transaction set. Every create, update and
// delete ends with a full recomputation of the totals; incremental deltas
// are deliberately avoided so partial updates can never drift the cache.
type LedgerService struct {
	ledger     LedgerStore
	totals     TotalsStore
	amqpClient *amqp.Client
	locks      *ownerLocks
}

// TransactionPatch carries the fields of an update; nil fields keep the
// stored value.
type TransactionPatch struct {
	Kind              *core.Kind
	Category          *core.Category
	Amount            *core.Money
	Description       *string
	OccursOn          *core.Date
	Notes             *string
	Tags              *[]string
	IsRecurring       *bool
	RecurrencePattern *core.RecurrencePattern
	RecurrenceEndDate *core.Date
}

func NewLedgerService(ledger LedgerStore, totals TotalsStore, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		ledger:     ledger,
		totals:     totals,
		amqpClient: amqpClient,
		locks:      newOwnerLocks(),
	}
}

// Create validates and persists a new transaction, then syncs the owner's
// totals.
func (s *LedgerService) Create(ctx context.Context, ownerID int64, tx core.Transaction) (core.Transaction, error) {
	tx.OwnerID = ownerID
	tx.ID = 0
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	stored, err := s.ledger.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.syncTotals(ctx, ownerID); err != nil {
		return core.Transaction{}, err
	}

	s.publishLedgerEvent(ctx, ownerID, stored.ID, amqp.ActionCreated)
	return stored, nil
}

// Update loads the owner's transaction, merges the patch, re-validates and
// persists, then syncs totals.
func (s *LedgerService) Update(ctx context.Context, ownerID, id int64, patch TransactionPatch) (core.Transaction, error) {
	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	tx, err := s.ledger.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	applyPatch(&tx, patch)

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.ledger.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	if err := s.syncTotals(ctx, ownerID); err != nil {
		return core.Transaction{}, err
	}

	s.publishLedgerEvent(ctx, ownerID, id, amqp.ActionUpdated)
	return tx, nil
}

// Delete removes the owner's transaction and syncs totals.
func (s *LedgerService) Delete(ctx context.Context, ownerID, id int64) error {
	mu := s.locks.lock(ownerID)
	defer mu.Unlock()

	if err := s.ledger.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.syncTotals(ctx, ownerID); err != nil {
		return err
	}

	s.publishLedgerEvent(ctx, ownerID, id, amqp.ActionDeleted)
	return nil
}

// Get returns one transaction scoped to the owner.
func (s *LedgerService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.ledger.GetTransaction(ctx, ownerID, id)
}

// List returns the owner's full ledger.
func (s *LedgerService) List(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.ledger.ListTransactions(ctx, ownerID)
}

// Totals returns the owner's cached totals.
func (s *LedgerService) Totals(ctx context.Context, ownerID int64) (core.Totals, error) {
	return s.totals.GetTotals(ctx, ownerID)
}

// syncTotals re-reads the owner's full transaction set, recomputes the
// totals and unconditionally overwrites the cache. Full recomputation, not
// an incremental delta: the cache must never drift from the ledger.
func (s *LedgerService) syncTotals(ctx context.Context, ownerID int64) error {
	txs, err := s.ledger.ListTransactions(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("reload ledger for totals sync: %w", err)
	}

	totals := core.ComputeTotals(txs)
	if err := s.totals.SetTotals(ctx, ownerID, totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	slog.DebugContext(ctx, "Totals synced",
		"owner_id", ownerID,
		"income_cents", totals.Income.Cents,
		"expenses_cents", totals.Expenses.Cents,
		"savings_cents", totals.Savings.Cents)

	return nil
}

func (s *LedgerService) publishLedgerEvent(ctx context.Context, ownerID, txID int64, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, ownerID, txID, action); err != nil {
		// The mutation is committed; a lost event only delays reporting.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"owner_id", ownerID,
			"transaction_id", txID,
			"action", action,
			"error", err)
	}
}

func applyPatch(tx *core.Transaction, patch TransactionPatch) {
	if patch.Kind != nil {
		tx.Kind = *patch.Kind
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.OccursOn != nil {
		tx.OccursOn = *patch.OccursOn
	}
	if patch.Notes != nil {
		tx.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		tx.Tags = *patch.Tags
	}
	if patch.IsRecurring != nil {
		tx.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrencePattern != nil {
		tx.RecurrencePattern = *patch.RecurrencePattern
	}
	if patch.RecurrenceEndDate != nil {
		tx.RecurrenceEndDate = *patch.RecurrenceEndDate
	}
}
