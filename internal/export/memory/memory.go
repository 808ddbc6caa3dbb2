package memory

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/core"
)

// Store keeps exported overviews in memory, keyed by owner and month.
// It stands in for the Google Sheets writer in tests.
type Store struct {
	mu        sync.Mutex
	overviews map[string]core.MonthOverview
}

func New() *Store {
	return &Store{overviews: make(map[string]core.MonthOverview)}
}

// WriteMonthOverview stores the overview, replacing any previous export for
// the same owner and month.
func (s *Store) WriteMonthOverview(_ context.Context, ownerID int64, overview core.MonthOverview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overviews[key(ownerID, overview.Year, overview.Month)] = overview
	return nil
}

// Get returns the last exported overview for an owner's month.
func (s *Store) Get(ownerID int64, year, month int) (core.MonthOverview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ov, ok := s.overviews[key(ownerID, year, month)]
	return ov, ok
}

// Len returns the number of distinct owner-months exported.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.overviews)
}

func key(ownerID int64, year, month int) string {
	return fmt.Sprintf("%d/%04d-%02d", ownerID, year, month)
}
