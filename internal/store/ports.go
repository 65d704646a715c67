package store

import (
	"context"

	"thrips/internal/core"
)

// Ports for the backing store of count records.
type (
	// RecordWriter inserts one record atomically and returns it with the
	// store-assigned ID and CreatedAt.
	RecordWriter interface {
		Insert(ctx context.Context, n core.NewCountRecord) (core.CountRecord, error)
	}

	// RecordReader returns every record ordered by CreatedAt ascending.
	RecordReader interface {
		ListAll(ctx context.Context) ([]core.CountRecord, error)
	}

	// Store is the full backing store contract.
	Store interface {
		RecordWriter
		RecordReader
	}

	// Pinger is implemented by stores that can report reachability.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
