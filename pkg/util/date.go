package util

import (
	"math"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD calendar date in UTC.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDay renders a time as a YYYY-MM-DD calendar date.
func FormatDay(t time.Time) string { return t.UTC().Format(dayLayout) }

// StartOfDay truncates a time to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil counts days from now until target, rounding partial days up.
// Zero or negative means the target is not in the future.
func DaysUntil(now, target time.Time) int {
	diff := target.Sub(now).Hours() / 24
	return int(math.Ceil(diff))
}
