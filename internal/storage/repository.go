package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"thrips/internal/core"
	"thrips/internal/store"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ store.Store  = (*SQLiteRepository)(nil)
	_ store.Pinger = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &core.StoreError{Op: "ping sqlite", Err: err}
	}
	return nil
}

// Insert implements store.RecordWriter
func (r *SQLiteRepository) Insert(ctx context.Context, n core.NewCountRecord) (core.CountRecord, error) {
	if err := n.Validate(); err != nil {
		return core.CountRecord{}, err
	}

	row, err := r.queries.CreateThrip(ctx, CreateThripParams{
		Tea:       n.Tea,
		Other:     n.Other,
		CreatedAt: r.now().UTC().Format(timeLayout),
	})
	if err != nil {
		return core.CountRecord{}, &core.StoreError{Op: "insert record", Err: err}
	}

	rec := toRecord(ctx, row)
	slog.InfoContext(ctx, "Thrips count saved to SQLite",
		"id", rec.ID,
		"tea", rec.Tea,
		"other", rec.Other)
	return rec, nil
}

// ListAll implements store.RecordReader
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.CountRecord, error) {
	rows, err := r.queries.ListThrips(ctx)
	if err != nil {
		return nil, &core.StoreError{Op: "list records", Err: err}
	}

	records := make([]core.CountRecord, len(rows))
	for i, row := range rows {
		records[i] = toRecord(ctx, row)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountThrips(ctx)
	if err != nil {
		return 0, &core.StoreError{Op: "count records", Err: err}
	}
	return n, nil
}

// toRecord converts a row. An unparseable created_at leaves CreatedAt zero
// so that aggregation rejects the record by ID.
func toRecord(ctx context.Context, row Thrip) core.CountRecord {
	rec := core.CountRecord{ID: row.ID, Tea: row.Tea, Other: row.Other}
	created, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		slog.WarnContext(ctx, "Malformed created_at in thrips table", "id", row.ID, "value", row.CreatedAt, "error", err)
		return rec
	}
	rec.CreatedAt = created
	return rec
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
