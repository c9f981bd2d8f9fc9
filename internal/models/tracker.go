package models

import (
	"time"

	"github.com/google/uuid"
)

// EngagementLevel classifies how actively a user engages with the companion.
type EngagementLevel string

const (
	EngagementLow      EngagementLevel = "low"
	EngagementModerate EngagementLevel = "moderate"
	EngagementHigh     EngagementLevel = "high"
)

// TimeOfDay is the bucketed hour-of-day a user most recently engaged.
type TimeOfDay string

const (
	TimeOfDayMorning TimeOfDay = "morning"
	TimeOfDayMidday  TimeOfDay = "midday"
	TimeOfDayEvening TimeOfDay = "evening"
	TimeOfDayUnset   TimeOfDay = "unset"
)

// ActivityKind is the subtype of an activity event.
type ActivityKind string

const (
	ActivityDeepStudy ActivityKind = "deep_study"
	ActivityQuickAsk  ActivityKind = "quick_ask"
	ActivityChat      ActivityKind = "chat"
)

// HistoryLimit bounds the tone/theme history sequences. Oldest entries are
// dropped on overflow.
const HistoryLimit = 10

// Tracker is the per-user engagement record: activity recency, streaks, and
// derived classification. Created on a user's first activity event and never
// deleted by this service.
type Tracker struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	LastActiveAt          time.Time       `json:"last_active_at"`
	TotalSessions         int             `json:"total_sessions"`
	DeepStudyCount        int             `json:"deep_study_count"`
	QuickAskCount         int             `json:"quick_ask_count"`
	EmotionalToneHistory  []string        `json:"emotional_tone_history"`
	SpiritualThemeHistory []string        `json:"spiritual_theme_history"`
	CurrentStreak         int             `json:"current_streak"`
	LongestStreak         int             `json:"longest_streak"`
	StreakBrokenAt        *time.Time      `json:"streak_broken_at,omitempty"`
	EngagementLevel       EngagementLevel `json:"engagement_level"`
	PreferredTimeOfDay    TimeOfDay       `json:"preferred_time_of_day"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// AppendBounded appends tag to history, dropping the oldest entry when the
// result would exceed HistoryLimit. Empty tags are ignored.
func AppendBounded(history []string, tag string) []string {
	if tag == "" {
		return history
	}
	history = append(history, tag)
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	return history
}
