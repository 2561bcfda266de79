package store

import (
	"regexp"
	"time"
)

var bareDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeStartDate converts a bare calendar date ("2026-01-01") to a full
// RFC3339 timestamp anchored at UTC midnight. Full timestamps and
// unrecognized values pass through unchanged.
func NormalizeStartDate(s string) string {
	if !bareDateRe.MatchString(s) {
		return s
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// parseStartDate parses a stored start date. The bool reports success.
func parseStartDate(s string) (time.Time, bool) {
	if bareDateRe.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// civilDaysBetween counts whole calendar days from start to today. Each
// instant is reduced to its civil date in its own zone (the start keeps the
// zone it was entered with, today uses the local clock) and both are
// re-anchored at a fixed reference (UTC midnight) so the count is stable
// across time-of-day and DST shifts. Negative spans clamp to zero.
//
// The start must keep its own zone: a bare start date is anchored at UTC
// midnight, and reducing that instant in a zone west of UTC would shift it
// back a day and overcount by one.
func civilDaysBetween(start, today time.Time) int {
	sy, sm, sd := start.Date()
	ty, tm, td := today.In(time.Local).Date()

	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	days := int(t.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
