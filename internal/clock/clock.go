// Package clock provides calendar-day arithmetic for the streak and
// eligibility engines. All computations are in UTC; callers inject "now"
// so engine behavior stays deterministic under test.
package clock

import "time"

// DayKey truncates a timestamp to midnight UTC of its calendar day.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed whole-day difference between the calendar
// days of a and b. Positive when b is after a.
func DaysBetween(a, b time.Time) int {
	return int(DayKey(b).Sub(DayKey(a)) / (24 * time.Hour))
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a).Equal(DayKey(b))
}

// IsFirstOfMonth reports whether t falls on the first day of its month.
func IsFirstOfMonth(t time.Time) bool {
	return t.UTC().Day() == 1
}

// Weekday returns the day of week for t, 0 = Sunday through 6 = Saturday.
// This matches the weekly-summary day convention used by the eligibility
// engine.
func Weekday(t time.Time) int {
	return int(t.UTC().Weekday())
}

// HourOf returns the UTC hour of day for t, 0-23.
func HourOf(t time.Time) int {
	return t.UTC().Hour()
}
