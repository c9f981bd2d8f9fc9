package models

import (
	"time"

	"github.com/google/uuid"
)

// Family identifies a notification family (companion persona or report line).
type Family string

const (
	FamilyHannah     Family = "hannah"
	FamilyChefDaniel Family = "chef_daniel"
	FamilyCoachDavid Family = "coach_david"
	FamilyReflection Family = "reflection"
)

// Families lists every known notification family.
var Families = []Family{FamilyHannah, FamilyChefDaniel, FamilyCoachDavid, FamilyReflection}

// Category identifies a notification category within a family.
type Category string

const (
	CategoryMorning       Category = "morning"
	CategoryMidday        Category = "midday"
	CategoryEvening       Category = "evening"
	CategorySuggestion    Category = "suggestion"
	CategoryWeeklySummary Category = "weekly_summary"
	CategoryMonthlyReport Category = "monthly_report"
)

// SuggestionFrequency is the configured cadence for proactive suggestions.
type SuggestionFrequency string

const (
	FrequencyDaily      SuggestionFrequency = "daily"
	FrequencyEvery3Days SuggestionFrequency = "every_3_days"
	FrequencyWeekly     SuggestionFrequency = "weekly"
)

// WeeklySummaryDay is the configured weekday for weekly growth summaries.
type WeeklySummaryDay string

const (
	WeeklySundayEvening WeeklySummaryDay = "sunday_evening"
	WeeklyMondayMorning WeeklySummaryDay = "monday_morning"
)

// NotificationSettings is the per-user, per-family record of enabled flags,
// cadence configuration, and last-sent stamps that drive eligibility.
// Last-sent stamps are nil until the first send; absence means "never sent",
// not a sentinel date.
type NotificationSettings struct {
	ID                   uuid.UUID           `json:"id"`
	UserID               uuid.UUID           `json:"user_id"`
	Family               Family              `json:"family"`
	MorningEnabled       bool                `json:"morning_enabled"`
	MiddayEnabled        bool                `json:"midday_enabled"`
	EveningEnabled       bool                `json:"evening_enabled"`
	SuggestionsEnabled   bool                `json:"suggestions_enabled"`
	WeeklySummaryEnabled bool                `json:"weekly_summary_enabled"`
	MonthlyReportEnabled bool                `json:"monthly_report_enabled"`
	SuggestionFrequency  SuggestionFrequency `json:"suggestion_frequency"`
	WeeklySummaryDay     WeeklySummaryDay    `json:"weekly_summary_day"`
	LastMorningSent      *time.Time          `json:"last_morning_sent,omitempty"`
	LastMiddaySent       *time.Time          `json:"last_midday_sent,omitempty"`
	LastEveningSent      *time.Time          `json:"last_evening_sent,omitempty"`
	LastSuggestionSent   *time.Time          `json:"last_suggestion_sent,omitempty"`
	LastWeeklySent       *time.Time          `json:"last_weekly_summary_sent,omitempty"`
	LastMonthlySent      *time.Time          `json:"last_monthly_report_sent,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// DefaultSettings returns the lazily-created defaults for a user+family.
// Daily pushes default on for the morning slot only; summaries and reports
// default on; suggestions default to every three days.
func DefaultSettings(userID uuid.UUID, family Family) *NotificationSettings {
	return &NotificationSettings{
		ID:                   uuid.New(),
		UserID:               userID,
		Family:               family,
		MorningEnabled:       true,
		MiddayEnabled:        false,
		EveningEnabled:       false,
		SuggestionsEnabled:   true,
		WeeklySummaryEnabled: true,
		MonthlyReportEnabled: true,
		SuggestionFrequency:  FrequencyEvery3Days,
		WeeklySummaryDay:     WeeklySundayEvening,
	}
}

// Enabled returns the enabled flag for cat.
func (s *NotificationSettings) Enabled(cat Category) bool {
	switch cat {
	case CategoryMorning:
		return s.MorningEnabled
	case CategoryMidday:
		return s.MiddayEnabled
	case CategoryEvening:
		return s.EveningEnabled
	case CategorySuggestion:
		return s.SuggestionsEnabled
	case CategoryWeeklySummary:
		return s.WeeklySummaryEnabled
	case CategoryMonthlyReport:
		return s.MonthlyReportEnabled
	default:
		return false
	}
}

// LastSent returns the last-sent stamp for cat, or nil if never sent.
func (s *NotificationSettings) LastSent(cat Category) *time.Time {
	switch cat {
	case CategoryMorning:
		return s.LastMorningSent
	case CategoryMidday:
		return s.LastMiddaySent
	case CategoryEvening:
		return s.LastEveningSent
	case CategorySuggestion:
		return s.LastSuggestionSent
	case CategoryWeeklySummary:
		return s.LastWeeklySent
	case CategoryMonthlyReport:
		return s.LastMonthlySent
	default:
		return nil
	}
}

// SetLastSent sets the last-sent stamp for cat.
func (s *NotificationSettings) SetLastSent(cat Category, t time.Time) {
	switch cat {
	case CategoryMorning:
		s.LastMorningSent = &t
	case CategoryMidday:
		s.LastMiddaySent = &t
	case CategoryEvening:
		s.LastEveningSent = &t
	case CategorySuggestion:
		s.LastSuggestionSent = &t
	case CategoryWeeklySummary:
		s.LastWeeklySent = &t
	case CategoryMonthlyReport:
		s.LastMonthlySent = &t
	}
}
