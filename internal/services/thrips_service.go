package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thrips/internal/core"
	"thrips/internal/metrics"
	"thrips/internal/store"
)

// Publisher announces stored records. The AMQP client satisfies it.
type Publisher interface {
	PublishRecorded(ctx context.Context, rec core.CountRecord) error
	Close() error
}

// ThripsService orchestrates count records across the store and the
// optional event publisher.
type ThripsService struct {
	store     store.Store
	publisher Publisher
	loc       *time.Location
	closers   []func() error
}

type Option func(*ThripsService)

// WithPublisher enables recorded events after each successful insert.
func WithPublisher(p Publisher) Option {
	return func(s *ThripsService) { s.publisher = p }
}

// WithLocation sets the time zone used to bucket timestamps.
func WithLocation(loc *time.Location) Option {
	return func(s *ThripsService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCloser registers a function run by Close, e.g. a store's Close.
func WithCloser(fn func() error) Option {
	return func(s *ThripsService) { s.closers = append(s.closers, fn) }
}

func NewThripsService(st store.Store, opts ...Option) *ThripsService {
	s := &ThripsService{store: st, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record validates and stores a new count, then publishes it. Publish
// failures are logged and never fail the request.
func (s *ThripsService) Record(ctx context.Context, n core.NewCountRecord) (core.CountRecord, error) {
	if err := n.Validate(); err != nil {
		metrics.RecordErrors.WithLabelValues("validation").Inc()
		return core.CountRecord{}, err
	}

	rec, err := s.store.Insert(ctx, n)
	if err != nil {
		if core.IsValidation(err) {
			metrics.RecordErrors.WithLabelValues("validation").Inc()
			return core.CountRecord{}, err
		}
		metrics.RecordErrors.WithLabelValues("store").Inc()
		if !core.IsStore(err) {
			err = &core.StoreError{Op: "insert record", Err: err}
		}
		return core.CountRecord{}, err
	}
	metrics.RecordsCreated.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishRecorded(ctx, rec); err != nil {
			metrics.PublishFailures.Inc()
			slog.ErrorContext(ctx, "Failed to publish recorded message", "id", rec.ID, "error", err)
		}
	}

	return rec, nil
}

// Aggregate reads every record and groups it into period buckets.
func (s *ThripsService) Aggregate(ctx context.Context, period core.Period) ([]core.Bucket, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		if !core.IsStore(err) {
			err = &core.StoreError{Op: "list records", Err: err}
		}
		metrics.RecordAggregation(period.String(), err)
		return nil, err
	}

	buckets, err := core.Aggregate(records, period, s.loc)
	metrics.RecordAggregation(period.String(), err)
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// Ping checks the store when it supports health checks.
func (s *ThripsService) Ping(ctx context.Context) error {
	if p, ok := s.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the publisher and registered closers.
func (s *ThripsService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close thrips service: %w", errors.Join(errs...))
	}
	return nil
}
