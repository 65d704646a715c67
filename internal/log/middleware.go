package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-level log helpers
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogRecordCreated logs a stored count record
func (sl *StructuredLogger) LogRecordCreated(ctx context.Context, id, tea, other int64) {
	fields := NewFields().
		WithRecord(id, tea, other).
		WithOperation(OpCreate)

	sl.logger.InfoContext(ctx, "Thrips count recorded", fields.ToSlice()...)
}

// LogAggregation logs a served aggregation
func (sl *StructuredLogger) LogAggregation(ctx context.Context, op, period string, buckets int) {
	fields := NewFields().
		WithPeriod(period, buckets).
		WithOperation(op)

	sl.logger.DebugContext(ctx, "Aggregation served", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
