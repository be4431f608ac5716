package fleet

import (
	"time"
)

// =============================================================================
// DAY ARITHMETIC - All forecast math runs at day granularity, UTC
// =============================================================================

// TruncateToDay normalizes a timestamp to midnight UTC. Every "whole days"
// comparison in the calculator goes through this first.
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns whole days from 'from' to 'to' on UTC-truncated dates.
// Negative when 'to' precedes 'from'.
func DaysBetween(from, to time.Time) int {
	return int(TruncateToDay(to).Sub(TruncateToDay(from)).Hours() / 24)
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	return TruncateToDay(time.Now())
}

// NewDate builds a midnight-UTC date. Test and seed helper.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
