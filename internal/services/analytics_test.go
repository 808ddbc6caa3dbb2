package services

import (
	"context"
	"testing"

	"tally/internal/core"
)

func seedLedger(t *testing.T, store *memStore) {
	t.Helper()
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{OwnerID: 1, Kind: core.Income, Category: core.CategorySalary, Amount: core.Money{Cents: 100000}, Description: "Salary", OccursOn: core.NewDate(2025, 1, 15)},
		{OwnerID: 1, Kind: core.Expense, Category: core.CategoryFood, Amount: core.Money{Cents: 20000}, Description: "Groceries", OccursOn: core.NewDate(2025, 1, 18), Tags: []string{"weekly-shop"}},
		{OwnerID: 1, Kind: core.Expense, Category: core.CategoryTransport, Amount: core.Money{Cents: 10000}, Description: "Train pass", OccursOn: core.NewDate(2025, 1, 20)},
		{OwnerID: 1, Kind: core.Expense, Category: core.CategoryFood, Amount: core.Money{Cents: 5000}, Description: "Takeaway", OccursOn: core.NewDate(2025, 2, 2)},
	} {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestAnalyticsMonthOverview(t *testing.T) {
	store := newMemStore()
	svc := NewAnalyticsService(store)
	seedLedger(t, store)

	overview, err := svc.MonthOverview(context.Background(), 1, 2025, 1)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if overview.Totals.Income.Cents != 100000 {
		t.Errorf("income = %d, want 100000", overview.Totals.Income.Cents)
	}
	if overview.Totals.Expenses.Cents != 30000 {
		t.Errorf("expenses = %d, want 30000 (february spending excluded)", overview.Totals.Expenses.Cents)
	}
	if overview.Totals.Savings.Cents != 70000 {
		t.Errorf("savings = %d, want 70000", overview.Totals.Savings.Cents)
	}

	if len(overview.ByCategory) != 2 {
		t.Fatalf("breakdown has %d categories, want 2", len(overview.ByCategory))
	}
	// Sorted by category name: food before transport.
	if overview.ByCategory[0].Category != core.CategoryFood || overview.ByCategory[0].Amount.Cents != 20000 {
		t.Errorf("breakdown[0] = %+v", overview.ByCategory[0])
	}
	if overview.ByCategory[1].Category != core.CategoryTransport || overview.ByCategory[1].Amount.Cents != 10000 {
		t.Errorf("breakdown[1] = %+v", overview.ByCategory[1])
	}
}

func TestAnalyticsOverviewCaching(t *testing.T) {
	store := newMemStore()
	svc := NewAnalyticsService(store)
	seedLedger(t, store)
	ctx := context.Background()

	first, err := svc.MonthOverview(ctx, 1, 2025, 1)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	// A write behind the cache's back is invisible until invalidation.
	if _, err := store.CreateTransaction(ctx, core.Transaction{
		OwnerID: 1, Kind: core.Expense, Category: core.CategoryShopping,
		Amount: core.Money{Cents: 9000}, Description: "Shoes",
		OccursOn: core.NewDate(2025, 1, 25),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cached, err := svc.MonthOverview(ctx, 1, 2025, 1)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if cached.Totals.Expenses.Cents != first.Totals.Expenses.Cents {
		t.Errorf("expected cached expenses %d, got %d", first.Totals.Expenses.Cents, cached.Totals.Expenses.Cents)
	}

	svc.Invalidate(1, 2025, 1)
	fresh, err := svc.MonthOverview(ctx, 1, 2025, 1)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if fresh.Totals.Expenses.Cents != 39000 {
		t.Errorf("expenses after invalidation = %d, want 39000", fresh.Totals.Expenses.Cents)
	}
}

func TestAnalyticsBreakdown(t *testing.T) {
	store := newMemStore()
	svc := NewAnalyticsService(store)
	seedLedger(t, store)

	// Open-ended window covering only January.
	breakdown, err := svc.Breakdown(context.Background(), 1, core.Expense, core.Date{}, core.NewDate(2025, 1, 31))
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("breakdown has %d categories, want 2", len(breakdown))
	}
	if breakdown[core.CategoryFood].Cents != 20000 {
		t.Errorf("food = %d, want 20000", breakdown[core.CategoryFood].Cents)
	}
	if _, ok := breakdown[core.CategoryHousing]; ok {
		t.Error("categories without spending must be absent, not zero")
	}
}

func TestAnalyticsSearch(t *testing.T) {
	store := newMemStore()
	svc := NewAnalyticsService(store)
	seedLedger(t, store)
	ctx := context.Background()

	tests := []struct {
		query string
		want  int
	}{
		{"groceries", 1},
		{"GROCERIES", 1},
		{"weekly-shop", 1},
		{"", 4},
		{"no such thing", 0},
	}

	for _, tt := range tests {
		got, err := svc.Search(ctx, 1, tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("search %q: %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}
