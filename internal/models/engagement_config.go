package models

import "time"

// EngagementConfig holds the classifier thresholds and time-of-day bucket
// boundaries. The defaults mirror long-standing product behavior; they live
// in the database (with an optional YAML override at boot) so product can
// tune them without a deploy.
type EngagementConfig struct {
	ConfigKey string `json:"config_key" yaml:"-"`

	// Session-count thresholds: < ModerateSessions is low,
	// < HighSessions is moderate, else high.
	ModerateSessions int `json:"moderate_sessions" yaml:"moderate_sessions"`
	HighSessions     int `json:"high_sessions" yaml:"high_sessions"`

	// Hour-of-day bucket boundaries, half-open [start, end).
	MorningStartHour int `json:"morning_start_hour" yaml:"morning_start_hour"`
	MiddayStartHour  int `json:"midday_start_hour" yaml:"midday_start_hour"`
	EveningStartHour int `json:"evening_start_hour" yaml:"evening_start_hour"`
	EveningEndHour   int `json:"evening_end_hour" yaml:"evening_end_hour"`

	// ActivityWindowDays is the trailing window a user must have been
	// active within for a monthly report to fire.
	ActivityWindowDays int `json:"activity_window_days" yaml:"activity_window_days"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// DefaultEngagementConfig returns the stock tuning values.
func DefaultEngagementConfig() *EngagementConfig {
	return &EngagementConfig{
		ConfigKey:          "default",
		ModerateSessions:   3,
		HighSessions:       10,
		MorningStartHour:   6,
		MiddayStartHour:    12,
		EveningStartHour:   17,
		EveningEndHour:     21,
		ActivityWindowDays: 30,
	}
}
