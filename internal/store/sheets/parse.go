package sheets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"thrips/internal/core"
)

var errBlankRow = errors.New("blank row")

// parseRow converts one A:D row. A bad createdAt is reported but the record
// is still returned with a zero CreatedAt, so aggregation rejects it by id.
// Bad counts do the same.
func parseRow(raw []interface{}) (core.CountRecord, error) {
	cols := toStrings(raw)
	if len(cols) == 0 || strings.Join(cols, "") == "" {
		return core.CountRecord{}, errBlankRow
	}
	for len(cols) < 4 {
		cols = append(cols, "")
	}

	id, err := parseCount(cols[0])
	if err != nil {
		return core.CountRecord{}, fmt.Errorf("id: %w", err)
	}
	tea, err := parseCount(cols[2])
	if err != nil {
		return core.CountRecord{ID: id}, fmt.Errorf("tea: %w", err)
	}
	other, err := parseCount(cols[3])
	if err != nil {
		return core.CountRecord{ID: id}, fmt.Errorf("other: %w", err)
	}

	rec := core.CountRecord{ID: id, Tea: tea, Other: other}
	created, err := time.Parse(time.RFC3339, cols[1])
	if err != nil {
		return rec, fmt.Errorf("createdAt %q: %w", cols[1], err)
	}
	rec.CreatedAt = created.UTC()
	return rec, nil
}

// parseCount accepts non-negative integers, including the "3.0" rendering
// Sheets sometimes returns for numeric cells.
func parseCount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f >= 1<<63 || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}

// nextID returns one more than the largest numeric id in column A.
func nextID(values [][]interface{}) int64 {
	var max int64
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		if id, err := parseCount(strings.TrimSpace(fmt.Sprint(row[0]))); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
