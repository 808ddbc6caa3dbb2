package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// memStore is an in-memory stand-in for storage.SQLiteRepository.
type memStore struct {
	mu         sync.Mutex
	nextTxID   int64
	nextGoalID int64
	txs        map[int64]core.Transaction
	goals      map[int64]core.Goal
	totals     map[int64]core.Totals
	lastExec   map[int64]time.Time
	totalsSets int
}

func newMemStore() *memStore {
	return &memStore{
		txs:      make(map[int64]core.Transaction),
		goals:    make(map[int64]core.Goal),
		totals:   make(map[int64]core.Totals),
		lastExec: make(map[int64]time.Time),
	}
}

func (m *memStore) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTxID++
	tx.ID = m.nextTxID
	m.txs[tx.ID] = tx
	return tx, nil
}

func (m *memStore) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (m *memStore) ListTransactions(_ context.Context, ownerID int64) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, tx := range m.txs {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.txs[tx.ID]
	if !ok || existing.OwnerID != tx.OwnerID {
		return core.ErrNotFound
	}
	m.txs[tx.ID] = tx
	return nil
}

func (m *memStore) DeleteTransaction(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok || tx.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

func (m *memStore) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGoalID++
	g.ID = m.nextGoalID
	m.goals[g.ID] = g
	return g, nil
}

func (m *memStore) GetGoal(_ context.Context, ownerID, id int64) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.Goal{}, core.ErrNotFound
	}
	return g, nil
}

func (m *memStore) ListGoals(_ context.Context, ownerID int64) ([]core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Goal
	for _, g := range m.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateGoal(_ context.Context, g core.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.goals[g.ID]
	if !ok || existing.OwnerID != g.OwnerID {
		return core.ErrNotFound
	}
	m.goals[g.ID] = g
	return nil
}

func (m *memStore) DeleteGoal(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *memStore) GetTotals(_ context.Context, ownerID int64) (core.Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[ownerID], nil
}

func (m *memStore) SetTotals(_ context.Context, ownerID int64, t core.Totals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[ownerID] = t
	m.totalsSets++
	return nil
}

func (m *memStore) ListRecurringTransactions(_ context.Context) ([]storage.RecurringTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.RecurringTransaction
	for _, tx := range m.txs {
		if tx.IsRecurring {
			out = append(out, storage.RecurringTransaction{
				Transaction:   tx,
				LastExecution: m.lastExec[tx.ID],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transaction.ID < out[j].Transaction.ID })
	return out, nil
}

func (m *memStore) MarkRecurringExecuted(_ context.Context, id int64, executedOn time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return core.ErrNotFound
	}
	m.lastExec[id] = executedOn
	return nil
}

var (
	_ LedgerStore    = (*memStore)(nil)
	_ GoalStore      = (*memStore)(nil)
	_ TotalsStore    = (*memStore)(nil)
	_ RecurringStore = (*memStore)(nil)
)
