package backend

import (
	"context"
	"fmt"
	"log/slog"

	"thrips/internal/amqp"
	"thrips/internal/services"
	"thrips/internal/storage"
	"thrips/internal/store"
	"thrips/internal/store/memory"
	"thrips/internal/store/sheets"
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
	return &DefaultFactory{
		logger: logger.With("component", "backend"),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st      store.Store
		cleanup []func() error
		err     error
	)
	switch config.Type {
	case SQLiteBackend:
		st, cleanup, err = f.createSQLiteStore(ctx, config)
	case SheetsBackend:
		st, err = f.createSheetsStore(ctx, config)
	case MemoryBackend:
		st = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithLocation(config.Location)}
	for _, fn := range cleanup {
		opts = append(opts, services.WithCloser(fn))
	}
	if pub := f.createPublisher(config); pub != nil {
		opts = append(opts, services.WithPublisher(pub))
	}

	svc := services.NewThripsService(st, opts...)
	return &BackendResult{
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (store.Store, []func() error, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "records", n)
	return repo, []func() error{repo.Close}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (store.Store, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
	return cli, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) store.Store {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return memory.NewFromFiles(dataDir)
}

// createPublisher returns nil when AMQP is disabled or unreachable; the
// service then runs without recorded events.
func (f *DefaultFactory) createPublisher(config Config) services.Publisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP publisher",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client
}
