package backend

import (
	"context"
	"fmt"
	"log/slog"

	"rentdash/internal/source/csvfile"
	"rentdash/internal/source/memory"
	"rentdash/internal/source/sheets"
	"rentdash/internal/storage"
)

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
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		f.logger.Info("Initialized CSV backend", "path", config.DatasetPath)
		return &BackendResult{Source: csvfile.New(config.DatasetPath)}, nil
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	src, err := sheets.NewFromConfig(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		Range:              config.GoogleSheetRange,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "source", src.Describe())

	return &BackendResult{Source: src}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store, err := memory.NewSample()
	if err != nil {
		return nil, fmt.Errorf("failed to load sample dataset: %w", err)
	}

	f.logger.Info("Initialized memory backend", "source", store.Describe())

	return &BackendResult{Source: store}, nil
}
