package core

import (
	"math"
	"sort"
	"time"
)

// BucketKey identifies a bucket. Value is a date (Day), the Monday of a
// week (Week) or a year-month (Month); Period decides which.
type BucketKey struct {
	Period Period
	Value  string
}

// Bucket holds the sums of every record whose key matches.
type Bucket struct {
	Key      BucketKey
	SumTea   int64
	SumOther int64
}

// Aggregate groups records by the key of period and sums both counters.
// Records are bucketed in loc (UTC when nil). The result is sorted by key
// ascending, which is chronological for all three key formats.
//
// A record with a zero timestamp or a negative counter makes the whole
// call fail with a *ValidationError naming that record, as does a bucket
// sum that would overflow int64.
func Aggregate(records []CountRecord, period Period, loc *time.Location) ([]Bucket, error) {
	if !period.IsValid() {
		period = Day
	}
	if loc == nil {
		loc = time.UTC
	}

	groups := make(map[string]*Bucket)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		key := period.KeyOf(r.CreatedAt.In(loc))
		b, ok := groups[key]
		if !ok {
			b = &Bucket{Key: BucketKey{Period: period, Value: key}}
			groups[key] = b
		}
		if b.SumTea > math.MaxInt64-r.Tea {
			return nil, &ValidationError{Field: "tea", Reason: "bucket sum overflows", RecordID: r.ID}
		}
		if b.SumOther > math.MaxInt64-r.Other {
			return nil, &ValidationError{Field: "other", Reason: "bucket sum overflows", RecordID: r.ID}
		}
		b.SumTea += r.Tea
		b.SumOther += r.Other
	}

	result := make([]Bucket, 0, len(groups))
	for _, b := range groups {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key.Value < result[j].Key.Value
	})
	return result, nil
}
