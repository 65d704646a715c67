package core

import (
	"fmt"
	"time"
)

// MaxCount bounds a single observation so bucket sums stay far from int64
// overflow.
const MaxCount = 1_000_000_000

type (
	// CountRecord is one stored observation. Records are immutable once
	// inserted; the store assigns ID and CreatedAt.
	CountRecord struct {
		ID        int64
		CreatedAt time.Time
		Tea       int64 // Scirtothrips dorsalis (tea thrips)
		Other     int64 // any other species
	}

	// NewCountRecord carries the caller supplied fields of an insert.
	NewCountRecord struct {
		Tea   int64
		Other int64
	}
)

func (n NewCountRecord) Validate() error {
	if err := validateCount("tea", n.Tea); err != nil {
		return err
	}
	return validateCount("other", n.Other)
}

func validateCount(field string, v int64) error {
	if v < 0 {
		return &ValidationError{Field: field, Reason: "must be a non-negative integer"}
	}
	if v > MaxCount {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d", MaxCount)}
	}
	return nil
}

// Validate checks a stored record before it is aggregated.
func (r CountRecord) Validate() error {
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Reason: "malformed or missing timestamp", RecordID: r.ID}
	}
	if r.Tea < 0 {
		return &ValidationError{Field: "tea", Reason: "negative count", RecordID: r.ID}
	}
	if r.Other < 0 {
		return &ValidationError{Field: "other", Reason: "negative count", RecordID: r.ID}
	}
	return nil
}
