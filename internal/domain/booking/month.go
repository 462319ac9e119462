package booking

import (
	"errors"
	"time"
)

// MonthLayout is the storage format for booking months.
const MonthLayout = "2006-01"

// ErrInvalidMonth is returned when a month string is not YYYY-MM.
var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

// MonthOption is one entry of the month selector.
type MonthOption struct {
	Value string // YYYY-MM
	Label string // e.g. "June 2025"
}

// ParseMonth parses a YYYY-MM string into the first instant of that month (UTC).
// PRE: none
// POST: Returns ErrInvalidMonth for malformed input
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthOf returns the YYYY-MM key for t in t's location.
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}

// FormatMonth turns "2025-06" into "June 2025". Malformed input is returned as-is.
func FormatMonth(s string) string {
	t, err := ParseMonth(s)
	if err != nil {
		return s
	}
	return t.Format("January 2006")
}

// NextMonths returns n month options starting with the month containing now.
// PRE: n >= 0
// POST: len(result) == n, months are consecutive
func NextMonths(now time.Time, n int) []MonthOption {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	opts := make([]MonthOption, 0, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, i, 0)
		opts = append(opts, MonthOption{
			Value: m.Format(MonthLayout),
			Label: m.Format("January 2006"),
		})
	}
	return opts
}
