package generic

import (
	"time"
)

// =============================================================================
// DAYS - Calendar days in a given location
// =============================================================================

// DateLayout is the ISO-8601 date layout used at every boundary.
const DateLayout = "2006-01-02"

// MissingDateLabel is rendered wherever a date is absent.
const MissingDateLabel = "N/A"

// Epoch is the earliest date statements are ever computed from.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a falls on the calendar day of day, in day's location.
func SameDay(a, day time.Time) bool {
	a = a.In(day.Location())
	y1, m1, d1 := a.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ParseDate parses an ISO date as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders t as an ISO date, or MissingDateLabel when t is zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return MissingDateLabel
	}
	return t.Format(DateLayout)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(StartOfMonth(t).AddDate(0, 1, -1))
}
