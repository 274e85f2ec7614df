package backend

import (
	"context"

	"rampview/internal/core"
)

// TransactionStore is the persistence surface the rest of the service
// depends on. Both the SQLite repository and the in-memory store satisfy it.
type TransactionStore interface {
	ReplaceSnapshot(ctx context.Context, channel core.Channel, txs []core.Transaction) error
	ListTransactions(ctx context.Context, channel core.Channel) ([]core.Transaction, error)
	CountByStatus(ctx context.Context, channel core.Channel) ([]core.StatusCount, error)
	Close() error
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
