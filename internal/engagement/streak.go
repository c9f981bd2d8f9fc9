// Package engagement implements streak tracking and engagement
// classification for per-user activity events.
package engagement

import (
	"time"

	"github.com/gideonapp/engage/internal/clock"
)

// StreakState is the streak portion of a tracker. AdvanceStreak is pure over
// it; the caller persists the result and updates last_active_at.
type StreakState struct {
	Current  int
	Longest  int
	BrokenAt *time.Time
}

// AdvanceStreak computes the streak state after an activity event at now,
// given the previous event time.
//
// Gap of 0 days leaves the streak unchanged, so multiple events on one
// calendar day count once. A gap of exactly 1 extends the streak. A larger
// gap resets to 1 and records the break date. A negative gap (clock skew or
// an out-of-order event) is treated as same-day rather than an error.
func AdvanceStreak(s StreakState, lastActive, now time.Time) StreakState {
	gap := clock.DaysBetween(lastActive, now)

	switch {
	case gap <= 0:
		// Same day or skew: no change.
	case gap == 1:
		s.Current++
	default:
		broken := clock.DayKey(now)
		s.BrokenAt = &broken
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// NewStreak is the state after a user's first activity event.
func NewStreak() StreakState {
	return StreakState{Current: 1, Longest: 1}
}
