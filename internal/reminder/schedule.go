// Package reminder computes daily reminder times and dispatches due reminders.
package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ValidClock reports whether s is a 24h HH:mm time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ParseClock splits an HH:mm string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q, expected HH:mm", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// NextOccurrence returns the first instant strictly after `after` whose UTC
// wall clock reads hhmm.
func NextOccurrence(hhmm string, after time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	after = after.UTC()
	next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
