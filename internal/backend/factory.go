package backend

import (
	"fmt"

	"rampview/internal/config"
	"rampview/internal/log"
	"rampview/internal/storage"
)

// CreateStore builds the transaction store selected by the application
// config.
func CreateStore(cfg *config.Config, logger *log.Logger) (TransactionStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	blog := logger.WithComponent(log.ComponentBackend)

	switch backendType {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		blog.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return repo, nil

	case MemoryBackend:
		blog.Info("Initialized in-memory store")
		return storage.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
