package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

// RecurringTransaction pairs a recurring transaction template with its
// materialization bookkeeping.
type RecurringTransaction struct {
	Transaction   core.Transaction
	LastExecution time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a transaction and returns it with its assigned ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			owner_id, kind, category, amount_cents, description, occurs_on,
			notes, tags, is_recurring, recurrence_pattern, recurrence_end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, string(tx.Kind), string(tx.Category), tx.Amount.Cents,
		tx.Description, encodeDate(tx.OccursOn), tx.Notes, tags,
		boolToInt(tx.IsRecurring), string(tx.RecurrencePattern),
		encodeDate(tx.RecurrenceEndDate))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"owner_id", tx.OwnerID,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

// GetTransaction loads one transaction scoped to its owner. A row owned by
// another user is indistinguishable from a missing one.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, description,
		       occurs_on, notes, tags, is_recurring, recurrence_pattern,
		       recurrence_end_date
		FROM transactions
		WHERE owner_id = ? AND id = ?`, ownerID, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns the owner's full ledger, newest date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, description,
		       occurs_on, notes, tags, is_recurring, recurrence_pattern,
		       recurrence_end_date
		FROM transactions
		WHERE owner_id = ?
		ORDER BY occurs_on DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// UpdateTransaction overwrites the mutable fields of an existing row,
// scoped to the owner.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			kind = ?, category = ?, amount_cents = ?, description = ?,
			occurs_on = ?, notes = ?, tags = ?, is_recurring = ?,
			recurrence_pattern = ?, recurrence_end_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND id = ?`,
		string(tx.Kind), string(tx.Category), tx.Amount.Cents, tx.Description,
		encodeDate(tx.OccursOn), tx.Notes, tags, boolToInt(tx.IsRecurring),
		string(tx.RecurrencePattern), encodeDate(tx.RecurrenceEndDate),
		tx.OwnerID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// DeleteTransaction removes a row scoped to the owner.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// ListRecurringTransactions returns every recurring template across owners
// together with its last materialization date.
func (r *SQLiteRepository) ListRecurringTransactions(ctx context.Context) ([]RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, description,
		       occurs_on, notes, tags, is_recurring, recurrence_pattern,
		       recurrence_end_date, last_execution_date
		FROM transactions
		WHERE is_recurring = 1`)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []RecurringTransaction
	for rows.Next() {
		var (
			tx       core.Transaction
			tagsRaw  string
			occurs   string
			endDate  string
			lastExec string
			rec      int
		)
		err := rows.Scan(&tx.ID, &tx.OwnerID, &tx.Kind, &tx.Category,
			&tx.Amount.Cents, &tx.Description, &occurs, &tx.Notes, &tagsRaw,
			&rec, &tx.RecurrencePattern, &endDate, &lastExec)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		tx.IsRecurring = rec != 0
		if tx.OccursOn, err = decodeDate(occurs); err != nil {
			return nil, fmt.Errorf("decode occurs_on: %w", err)
		}
		if tx.RecurrenceEndDate, err = decodeDate(endDate); err != nil {
			return nil, fmt.Errorf("decode recurrence_end_date: %w", err)
		}
		if tx.Tags, err = decodeTags(tagsRaw); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		item := RecurringTransaction{Transaction: tx}
		if d, err := decodeDate(lastExec); err == nil && !d.IsEmpty() {
			item.LastExecution = d.Time
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring transactions: %w", err)
	}
	return out, nil
}

// MarkRecurringExecuted records when a recurring template was last
// materialized into a concrete transaction.
func (r *SQLiteRepository) MarkRecurringExecuted(ctx context.Context, id int64, executedOn time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET last_execution_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_recurring = 1`,
		executedOn.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("mark recurring executed: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// CreateGoal inserts a goal and returns it with its assigned ID.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (
			owner_id, title, description, type, status, target_cents,
			current_cents, target_date, monthly_contribution_cents,
			is_recurring, recurrence_pattern, recurrence_end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.OwnerID, g.Title, g.Description, string(g.Type), string(g.Status),
		g.TargetAmount.Cents, g.CurrentAmount.Cents, encodeDate(g.TargetDate),
		g.MonthlyContribution.Cents, boolToInt(g.IsRecurring),
		string(g.RecurrencePattern), encodeDate(g.RecurrenceEndDate))
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id

	slog.InfoContext(ctx, "Goal saved",
		"id", g.ID,
		"owner_id", g.OwnerID,
		"title", g.Title,
		"target_cents", g.TargetAmount.Cents)

	return g, nil
}

// GetGoal loads one goal scoped to its owner.
func (r *SQLiteRepository) GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, type, status, target_cents,
		       current_cents, target_date, monthly_contribution_cents,
		       is_recurring, recurrence_pattern, recurrence_end_date
		FROM goals
		WHERE owner_id = ? AND id = ?`, ownerID, id)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, core.ErrNotFound
		}
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ListGoals returns all of the owner's goals.
func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, type, status, target_cents,
		       current_cents, target_date, monthly_contribution_cents,
		       is_recurring, recurrence_pattern, recurrence_end_date
		FROM goals
		WHERE owner_id = ?
		ORDER BY target_date ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// UpdateGoal overwrites the mutable fields of a goal, scoped to the owner.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET
			title = ?, description = ?, type = ?, status = ?, target_cents = ?,
			current_cents = ?, target_date = ?, monthly_contribution_cents = ?,
			is_recurring = ?, recurrence_pattern = ?, recurrence_end_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND id = ?`,
		g.Title, g.Description, string(g.Type), string(g.Status),
		g.TargetAmount.Cents, g.CurrentAmount.Cents, encodeDate(g.TargetDate),
		g.MonthlyContribution.Cents, boolToInt(g.IsRecurring),
		string(g.RecurrencePattern), encodeDate(g.RecurrenceEndDate),
		g.OwnerID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// DeleteGoal removes a goal scoped to the owner.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// GetTotals reads the cached totals for an owner. A missing row reads as
// all zeros, matching an empty ledger.
func (r *SQLiteRepository) GetTotals(ctx context.Context, ownerID int64) (core.Totals, error) {
	var t core.Totals
	err := r.db.QueryRowContext(ctx, `
		SELECT income_cents, expenses_cents, savings_cents
		FROM user_totals WHERE owner_id = ?`, ownerID).
		Scan(&t.Income.Cents, &t.Expenses.Cents, &t.Savings.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Totals{}, nil
	}
	if err != nil {
		return core.Totals{}, fmt.Errorf("get totals: %w", err)
	}
	return t, nil
}

// SetTotals unconditionally overwrites the cached totals for an owner.
func (r *SQLiteRepository) SetTotals(ctx context.Context, ownerID int64, t core.Totals) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_totals (owner_id, income_cents, expenses_cents, savings_cents, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner_id) DO UPDATE SET
			income_cents = excluded.income_cents,
			expenses_cents = excluded.expenses_cents,
			savings_cents = excluded.savings_cents,
			updated_at = CURRENT_TIMESTAMP`,
		ownerID, t.Income.Cents, t.Expenses.Cents, t.Savings.Cents)
	if err != nil {
		return fmt.Errorf("set totals: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		tagsRaw string
		occurs  string
		endDate string
		rec     int
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Kind, &tx.Category,
		&tx.Amount.Cents, &tx.Description, &occurs, &tx.Notes, &tagsRaw,
		&rec, &tx.RecurrencePattern, &endDate)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.IsRecurring = rec != 0
	if tx.OccursOn, err = decodeDate(occurs); err != nil {
		return core.Transaction{}, fmt.Errorf("decode occurs_on: %w", err)
	}
	if tx.RecurrenceEndDate, err = decodeDate(endDate); err != nil {
		return core.Transaction{}, fmt.Errorf("decode recurrence_end_date: %w", err)
	}
	if tx.Tags, err = decodeTags(tagsRaw); err != nil {
		return core.Transaction{}, fmt.Errorf("decode tags: %w", err)
	}
	return tx, nil
}

func scanGoal(row scanner) (core.Goal, error) {
	var (
		g       core.Goal
		target  string
		endDate string
		rec     int
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.Type,
		&g.Status, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &target,
		&g.MonthlyContribution.Cents, &rec, &g.RecurrencePattern, &endDate)
	if err != nil {
		return core.Goal{}, err
	}
	g.IsRecurring = rec != 0
	if g.TargetDate, err = decodeDate(target); err != nil {
		return core.Goal{}, fmt.Errorf("decode target_date: %w", err)
	}
	if g.RecurrenceEndDate, err = decodeDate(endDate); err != nil {
		return core.Goal{}, fmt.Errorf("decode recurrence_end_date: %w", err)
	}
	return g, nil
}

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}

func decodeDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
