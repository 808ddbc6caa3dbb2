package services

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tally/internal/core"
)

// AnalyticsService serves the read-only dashboard queries: month overviews,
// category breakdowns and ledger search. Overviews are cached briefly; the
// cache is a read optimization only and never feeds the totals invariant.
type AnalyticsService struct {
	ledger    LedgerStore
	overviews *gocache.Cache
}

const overviewTTL = 30 * time.Second

func NewAnalyticsService(ledger LedgerStore) *AnalyticsService {
	return &AnalyticsService{
		ledger:    ledger,
		overviews: gocache.New(overviewTTL, 2*overviewTTL),
	}
}

// MonthOverview returns totals and the expense breakdown for one calendar
// month of the owner's ledger.
func (s *AnalyticsService) MonthOverview(ctx context.Context, ownerID int64, year, month int) (core.MonthOverview, error) {
	key := overviewKey(ownerID, year, month)
	if cached, ok := s.overviews.Get(key); ok {
		return cached.(core.MonthOverview), nil
	}

	txs, err := s.ledger.ListTransactions(ctx, ownerID)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("load ledger: %w", err)
	}

	overview := core.OverviewForMonth(txs, year, month)
	s.overviews.SetDefault(key, overview)
	return overview, nil
}

// Breakdown returns the per-category sums of one kind over a date window.
func (s *AnalyticsService) Breakdown(ctx context.Context, ownerID int64, kind core.Kind, start, end core.Date) (map[core.Category]core.Money, error) {
	txs, err := s.ledger.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return core.CategoryBreakdown(core.FilterByWindow(txs, start, end), kind), nil
}

// Search returns the owner's transactions matching the query.
func (s *AnalyticsService) Search(ctx context.Context, ownerID int64, query string) ([]core.Transaction, error) {
	txs, err := s.ledger.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return core.Search(txs, query), nil
}

// Invalidate drops the cached overviews for an owner's month, typically
// after a consumer learns the ledger changed.
func (s *AnalyticsService) Invalidate(ownerID int64, year, month int) {
	s.overviews.Delete(overviewKey(ownerID, year, month))
}

func overviewKey(ownerID int64, year, month int) string {
	return fmt.Sprintf("%d/%04d-%02d", ownerID, year, month)
}
