package core

import (
	"sort"
	"strings"
)

// Totals is the aggregate over a transaction set: income and expense sums
// plus their difference. Transfers net to zero and are excluded from both.
type Totals struct {
	Income   Money
	Expenses Money
	Savings  Money
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Totals     Totals
	ByCategory []CategoryAmount
}

// ComputeTotals sums the transaction set. Deterministic and total over
// well-formed input; an empty set yields the zero value.
func ComputeTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case Income:
			t.Income.Cents += tx.Amount.Cents
		case Expense:
			t.Expenses.Cents += tx.Amount.Cents
		}
	}
	t.Savings.Cents = t.Income.Cents - t.Expenses.Cents
	return t
}

// CategoryBreakdown groups transactions of a single kind by category and
// sums their amounts. Categories with no matching transactions are absent
// from the map, not zero-valued.
func CategoryBreakdown(txs []Transaction, kind Kind) map[Category]Money {
	out := make(map[Category]Money)
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		sum := out[tx.Category]
		sum.Cents += tx.Amount.Cents
		out[tx.Category] = sum
	}
	return out
}

// FilterByWindow returns the transactions whose OccursOn falls inside the
// inclusive [start, end] range. An empty bound leaves that side open.
func FilterByWindow(txs []Transaction, start, end Date) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !start.IsEmpty() && tx.OccursOn.Before(start) {
			continue
		}
		if !end.IsEmpty() && tx.OccursOn.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterByMonth restricts the set to a single calendar month.
func FilterByMonth(txs []Transaction, year, month int) []Transaction {
	start := NewDate(year, month, 1)
	end := NewDate(year, month+1, 1)
	end = DateOf(end.AddDate(0, 0, -1))
	return FilterByWindow(txs, start, end)
}

// FilterByYear restricts the set to a single calendar year.
func FilterByYear(txs []Transaction, year int) []Transaction {
	return FilterByWindow(txs, NewDate(year, 1, 1), NewDate(year, 12, 31))
}

// Search returns the transactions whose description, notes or any tag
// contains the query, case-insensitively. An empty query matches everything.
func Search(txs []Transaction, query string) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if matchesQuery(tx, q) {
			out = append(out, tx)
		}
	}
	return out
}

func matchesQuery(tx Transaction, q string) bool {
	if strings.Contains(strings.ToLower(tx.Description), q) {
		return true
	}
	if strings.Contains(strings.ToLower(tx.Notes), q) {
		return true
	}
	for _, tag := range tx.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// OverviewForMonth computes the dashboard summary for a month: window
// filter, totals and the expense category breakdown.
func OverviewForMonth(txs []Transaction, year, month int) MonthOverview {
	windowed := FilterByMonth(txs, year, month)
	overview := MonthOverview{
		Year:   year,
		Month:  month,
		Totals: ComputeTotals(windowed),
	}
	for cat, sum := range CategoryBreakdown(windowed, Expense) {
		overview.ByCategory = append(overview.ByCategory, CategoryAmount{
			Category: cat,
			Amount:   sum,
		})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		return overview.ByCategory[i].Category < overview.ByCategory[j].Category
	})
	return overview
}
