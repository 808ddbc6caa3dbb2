package services

import "sync"

// ownerLocks serializes read-modify-write sequences per owner. Totals sync
// and goal contributions both load state, derive a new value and write it
// back; without serialization two concurrent requests for the same owner
// could both read the same snapshot and one write would be lost.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *ownerLocks) lock(ownerID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}
