package utils

import (
	"time"
)

// DateLayout is the calendar date format used by the feeds
const DateLayout = "2006-01-02"

// Iso8601 formats t in UTC as RFC3339
func Iso8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Iso8601OrEmpty is Iso8601 with the zero time rendered as ""
func Iso8601OrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Iso8601(t)
}

// LocalDate returns the calendar date of t in loc
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// DateAfter returns the calendar date days after t in loc
func DateAfter(t time.Time, loc *time.Location, days int) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+days, 12, 0, 0, 0, loc).Format(DateLayout)
}
