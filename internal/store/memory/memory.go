package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"thrips/internal/core"
	"thrips/internal/store"
)

var _ store.Store = (*Store)(nil)

// SeedFile is the optional CSV read by NewFromFiles: createdAt,tea,other.
const SeedFile = "seed_thrips.csv"

type Store struct {
	mu     sync.Mutex
	items  []core.CountRecord
	nextID int64
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source used on insert.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{nextID: 1, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromFiles creates a store seeded from base/seed_thrips.csv when the
// file exists. Unparseable rows are skipped with a warning.
func NewFromFiles(base string, opts ...Option) *Store {
	s := New(opts...)
	records, err := readSeed(filepath.Join(base, SeedFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read seed file", "path", filepath.Join(base, SeedFile), "error", err)
		}
		return s
	}
	s.load(records)
	return s
}

// Insert stores the record with the next sequential ID.
func (s *Store) Insert(_ context.Context, n core.NewCountRecord) (core.CountRecord, error) {
	if err := n.Validate(); err != nil {
		return core.CountRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.CountRecord{
		ID:        s.nextID,
		CreatedAt: s.now().UTC(),
		Tea:       n.Tea,
		Other:     n.Other,
	}
	s.nextID++
	s.items = append(s.items, rec)
	return rec, nil
}

// ListAll returns a copy of all records ordered by CreatedAt.
func (s *Store) ListAll(_ context.Context) ([]core.CountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.CountRecord(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) load(records []core.CountRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		r.ID = s.nextID
		s.nextID++
		s.items = append(s.items, r)
	}
}

func readSeed(path string) ([]core.CountRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1

	var out []core.CountRecord
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		line++
		rec, err := parseSeedRow(row)
		if err != nil {
			if line > 1 {
				slog.Warn("Skipping seed row", "path", path, "line", line, "error", err)
			}
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseSeedRow(row []string) (core.CountRecord, error) {
	if len(row) < 3 {
		return core.CountRecord{}, fmt.Errorf("expected 3 columns, got %d", len(row))
	}
	created, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return core.CountRecord{}, fmt.Errorf("createdAt: %w", err)
	}
	tea, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
	if err != nil || tea < 0 {
		return core.CountRecord{}, fmt.Errorf("invalid tea %q", row[1])
	}
	other, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil || other < 0 {
		return core.CountRecord{}, fmt.Errorf("invalid other %q", row[2])
	}
	return core.CountRecord{CreatedAt: created.UTC(), Tea: tea, Other: other}, nil
}
