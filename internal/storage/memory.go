package storage

import (
	"context"
	"sync"

	"rampview/internal/core"
)

// MemoryStore keeps snapshots in memory. Useful for tests and local runs
// without a database file.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[core.Channel][]core.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[core.Channel][]core.Transaction),
	}
}

func (s *MemoryStore) ReplaceSnapshot(_ context.Context, channel core.Channel, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]core.Transaction, len(txs))
	copy(snapshot, txs)
	s.snapshots[channel] = snapshot
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, channel core.Channel) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.snapshots[channel]
	out := make([]core.Transaction, len(snapshot))
	copy(out, snapshot)
	return out, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context, channel core.Channel) ([]core.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return core.CountByStatus(s.snapshots[channel]), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
