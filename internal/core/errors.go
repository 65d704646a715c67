package core

import (
	"errors"
	"fmt"
)

// ErrMissingFields is reported when a write omits tea or other.
var ErrMissingFields = errors.New("missing required fields")

// ValidationError reports invalid input on the write path or an unusable
// stored record on the read path. RecordID is zero for write-path errors.
type ValidationError struct {
	Field    string
	Reason   string
	RecordID int64
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.RecordID != 0 {
		return fmt.Sprintf("record %d: %s: %s", e.RecordID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError wraps any failure of the backing persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err carries a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
