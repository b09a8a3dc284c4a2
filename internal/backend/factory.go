package backend

import (
	"context"
	"fmt"

	"rewards/internal/log"
	"rewards/internal/sources"
	gsheet "rewards/internal/sources/google"
	"rewards/internal/sources/httpjson"
	"rewards/internal/sources/memory"
	"rewards/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case HTTPBackend:
		res, err = f.createHTTPBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("Transaction source ready",
		"backend", config.Type.String(),
		"writable", res.Writer != nil,
		"cache_ttl", config.CacheTTL)
	return res, nil
}

func (f *DefaultFactory) wrap(next sources.TransactionProvider, config Config) *sources.CachedProvider {
	return sources.NewCachedProvider(next, config.CacheTTL, f.logger)
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.TransactionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions file: %w", err)
	}

	source := config.TransactionsFile
	if source == "" {
		source = "embedded seed"
	}
	f.logger.Info("Initialized memory backend", log.FieldSource, source)

	return &BackendResult{
		Provider: f.wrap(store, config),
		Writer:   store,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Provider: f.wrap(repo, config),
		Writer:   repo,
		Cleanup:  repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{Provider: f.wrap(cli, config)}, nil
}

func (f *DefaultFactory) createHTTPBackend(config Config) (*BackendResult, error) {
	cli := httpjson.New(config.TransactionsURL, nil)

	f.logger.Info("Initialized HTTP backend", "url", config.TransactionsURL)

	return &BackendResult{Provider: f.wrap(cli, config)}, nil
}
