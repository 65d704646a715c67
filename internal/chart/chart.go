// Package chart turns aggregated buckets into chart-ready series and CSV
// downloads. It performs no I/O of its own.
package chart

import (
	"thrips/internal/core"
)

// Dataset labels shown in the legend.
const (
	TeaLabel   = "チャノキイロ"
	OtherLabel = "別種"
)

// AxisStep is the y-axis tick spacing.
const AxisStep = 10

// Series holds parallel label/value arrays in bucket order.
type Series struct {
	Period      core.Period
	Labels      []string
	TeaValues   []int64
	OtherValues []int64
}

// Totals is the pie chart payload.
type Totals struct {
	Tea   int64 `json:"tea"`
	Other int64 `json:"other"`
}

// Build derives the line chart series from buckets.
func Build(period core.Period, buckets []core.Bucket) Series {
	s := Series{
		Period:      period,
		Labels:      make([]string, len(buckets)),
		TeaValues:   make([]int64, len(buckets)),
		OtherValues: make([]int64, len(buckets)),
	}
	for i, b := range buckets {
		s.Labels[i] = b.Key.Value
		s.TeaValues[i] = b.SumTea
		s.OtherValues[i] = b.SumOther
	}
	return s
}

// Totals sums both series.
func (s Series) Totals() Totals {
	var t Totals
	for _, v := range s.TeaValues {
		t.Tea += v
	}
	for _, v := range s.OtherValues {
		t.Other += v
	}
	return t
}

// AxisMax is the largest value rounded up to the next multiple of AxisStep.
func AxisMax(s Series) int64 {
	var maxY int64
	for _, v := range s.TeaValues {
		maxY = max(maxY, v)
	}
	for _, v := range s.OtherValues {
		maxY = max(maxY, v)
	}
	return (maxY + AxisStep - 1) / AxisStep * AxisStep
}

// Title is the card heading for a period.
func Title(p core.Period) string {
	switch p {
	case core.Week:
		return "Weekly"
	case core.Month:
		return "Monthly"
	default:
		return "Daily"
	}
}

// DefaultMonth is the month preselected in the pie view: the first
// bucket, or "" when there is none.
func DefaultMonth(buckets []core.Bucket) string {
	if len(buckets) == 0 {
		return ""
	}
	return buckets[0].Key.Value
}

// MonthSlice returns the pie data of one month bucket.
func MonthSlice(buckets []core.Bucket, yearMonth string) (Totals, bool) {
	for _, b := range buckets {
		if b.Key.Period == core.Month && b.Key.Value == yearMonth {
			return Totals{Tea: b.SumTea, Other: b.SumOther}, true
		}
	}
	return Totals{}, false
}
