// Package notify decides whether a notification category should fire for a
// user at a given moment. Decisions are pure over the settings snapshot,
// the user's last activity, and an injected "now"; persistence and content
// generation belong to the dispatch layer.
package notify

import (
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/clock"
	"github.com/gideonapp/engage/internal/models"
)

// suggestionIntervals maps a configured cadence to its minimum day gap.
var suggestionIntervals = map[models.SuggestionFrequency]int{
	models.FrequencyDaily:      1,
	models.FrequencyEvery3Days: 3,
	models.FrequencyWeekly:     7,
}

// summaryWeekdays maps a weekly-summary day setting to clock.Weekday values
// (0 = Sunday).
var summaryWeekdays = map[models.WeeklySummaryDay]int{
	models.WeeklySundayEvening: 0,
	models.WeeklyMondayMorning: 1,
}

// Eligible reports whether cat should fire for the settings record at now.
// lastActive is the user's most recent activity timestamp (nil when the
// user has no tracker); only monthly reports consult it.
//
// Malformed cadence configuration fails closed: the record is ineligible
// and the error describes why, so one bad row never aborts a dispatch run.
func Eligible(s *models.NotificationSettings, cat models.Category, lastActive *time.Time, cfg *models.EngagementConfig, now time.Time) (bool, error) {
	if !s.Enabled(cat) {
		return false, nil
	}

	switch cat {
	case models.CategoryMorning, models.CategoryMidday, models.CategoryEvening:
		return !sentToday(s, cat, now), nil

	case models.CategorySuggestion:
		required, ok := suggestionIntervals[s.SuggestionFrequency]
		if !ok {
			return false, fmt.Errorf("unknown suggestion frequency %q", s.SuggestionFrequency)
		}
		last := s.LastSuggestionSent
		if last == nil {
			// Never sent: always eligible. No sentinel dates.
			return true, nil
		}
		return clock.DaysBetween(*last, now) >= required, nil

	case models.CategoryWeeklySummary:
		day, ok := summaryWeekdays[s.WeeklySummaryDay]
		if !ok {
			return false, fmt.Errorf("unknown weekly summary day %q", s.WeeklySummaryDay)
		}
		if clock.Weekday(now) != day {
			return false, nil
		}
		return !sentToday(s, cat, now), nil

	case models.CategoryMonthlyReport:
		if !clock.IsFirstOfMonth(now) {
			return false, nil
		}
		if sentToday(s, cat, now) {
			return false, nil
		}
		// A report over an empty month is noise; require activity within
		// the trailing window.
		if lastActive == nil {
			return false, nil
		}
		return clock.DaysBetween(*lastActive, now) <= cfg.ActivityWindowDays, nil

	default:
		return false, fmt.Errorf("unknown category %q", cat)
	}
}

func sentToday(s *models.NotificationSettings, cat models.Category, now time.Time) bool {
	last := s.LastSent(cat)
	return last != nil && clock.SameDay(*last, now)
}
