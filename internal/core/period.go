package core

import (
	"strings"
	"time"
)

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Period selects the bucket granularity of an aggregation.
type Period string

// ParsePeriod maps user input to a Period. Unknown or empty values fall
// back to Day.
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week
	case Month:
		return Month
	default:
		return Day
	}
}

func (p Period) String() string {
	return string(p)
}

// IsValid returns true for the three supported granularities.
func (p Period) IsValid() bool {
	switch p {
	case Day, Week, Month:
		return true
	default:
		return false
	}
}

// Column is the name of the key column used in JSON and CSV output.
func (p Period) Column() string {
	switch p {
	case Week:
		return "yearWeek"
	case Month:
		return "yearMonth"
	default:
		return "date"
	}
}

// KeyOf returns the bucket key of t. The caller converts t to the
// reporting location first.
func (p Period) KeyOf(t time.Time) string {
	switch p {
	case Week:
		return WeekStart(t).Format(dayLayout)
	case Month:
		return t.Format(monthLayout)
	default:
		return t.Format(dayLayout)
	}
}

// WeekStart returns Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	wd := t.Weekday()
	if wd == time.Sunday {
		wd = 7
	}
	offset := int(wd) - int(time.Monday)
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}
