package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/ledger/memory"
	"bilancio/internal/storage"
)

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		store := memory.New()
		f.logger.Info("Initialized memory backend")
		return &Result{Backend: store, Cleanup: nil}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize Postgres repository: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
