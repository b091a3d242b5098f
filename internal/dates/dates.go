// Package dates holds the calendar-day arithmetic used by trip planning.
// Every value is normalized to midnight UTC so that adding days and
// measuring spans never crosses a DST boundary.
package dates

import (
	"strings"
	"time"
)

const Layout = "2006-01-02"

const day = 24 * time.Hour

// Parse accepts a plain calendar date or any of the timestamp layouts the
// optimizer has been seen to emit, and truncates the result to its day.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		Layout,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return Day(t), nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   s,
		Message: "unable to parse date",
	}
}

// Day drops the clock part of t, keeping its calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// SpanDays is the number of calendar days from start to end.
func SpanDays(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)) / day)
}

func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(Layout)
}
