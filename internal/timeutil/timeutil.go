// Package timeutil holds date and duration helpers shared by the store
// and the CLI.
package timeutil

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD date in the local time zone.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// DayString formats t as YYYY-MM-DD.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekBucket returns the ISO-8601 week key for t, e.g. "2026-W35".
// The year is the ISO week-year, which near January 1 can differ from
// the calendar year. Zero-padding keeps lexical order chronological.
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// FormatDuration renders seconds as "1h 40m", "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS renders seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
