package usecase

import (
	"sync"
	"time"
)

// BalanceNotifier receives change notifications that drive cache
// invalidation and recomputation queues.
type BalanceNotifier interface {
	TransactionChanged(accountID string, date time.Time)
	FlushQueues()
}

// BatchScope defers balance notifications accumulated during a bulk
// operation until Commit, then replays them coalesced (earliest change date
// per account) and flushes the queues once. Rollback discards everything,
// and is a no-op after Commit so it can sit in a defer.
type BatchScope struct {
	mu        sync.Mutex
	notifier  BalanceNotifier
	earliest  map[string]time.Time
	committed bool
	done      bool
}

// NewBatchScope opens a scope over the given notifier.
func NewBatchScope(notifier BalanceNotifier) *BatchScope {
	return &BatchScope{
		notifier: notifier,
		earliest: make(map[string]time.Time),
	}
}

// TransactionChanged buffers a change notification. The empty accountID is a
// valid key (category-only mutations).
func (s *BatchScope) TransactionChanged(accountID string, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	if existing, ok := s.earliest[accountID]; !ok || date.Before(existing) {
		s.earliest[accountID] = date
	}
}

// FlushQueues is deferred until Commit inside a scope.
func (s *BatchScope) FlushQueues() {}

// Commit replays buffered notifications and flushes the downstream queues.
func (s *BatchScope) Commit() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.committed = true
	buffered := s.earliest
	s.earliest = nil
	s.mu.Unlock()

	for accountID, date := range buffered {
		s.notifier.TransactionChanged(accountID, date)
	}
	s.notifier.FlushQueues()
}

// Rollback discards buffered notifications. No-op after Commit.
func (s *BatchScope) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	s.earliest = nil
}
