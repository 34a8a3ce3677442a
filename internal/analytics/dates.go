// Package analytics holds the pure computations behind stats, streaks,
// correlations, achievements and tips. Nothing here touches storage; callers
// fetch a snapshot of entries and pass it in.
package analytics

import "time"

// DayLayout is the calendar-day key used in storage and exports.
const DayLayout = "2006-01-02"

const day = 24 * time.Hour

// StartOfDay returns UTC midnight of the calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a's day to b's day.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)) / day)
}

// AddDays shifts the start of t's day by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// InclusiveRange returns the [start, end] days of a window of size days ending on end.
func InclusiveRange(end time.Time, window int) (time.Time, time.Time) {
	e := StartOfDay(end)
	return AddDays(e, -(window - 1)), e
}

// FormatDay renders t's UTC day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return StartOfDay(t).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key into UTC midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// InRange reports whether t's day lies within [start, end], inclusive.
func InRange(t, start, end time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(StartOfDay(start)) && !d.After(StartOfDay(end))
}
