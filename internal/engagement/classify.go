package engagement

import (
	"github.com/gideonapp/engage/internal/models"
)

// ClassifyLevel buckets a session count into an engagement level using the
// configured thresholds. There is deliberately no decay: a long-inactive
// user with many historical sessions still classifies high.
func ClassifyLevel(totalSessions int, cfg *models.EngagementConfig) models.EngagementLevel {
	switch {
	case totalSessions < cfg.ModerateSessions:
		return models.EngagementLow
	case totalSessions < cfg.HighSessions:
		return models.EngagementModerate
	default:
		return models.EngagementHigh
	}
}

// ClassifyTimeOfDay buckets the hour of the triggering event. Last write
// wins; this is a preference hint, not a distribution.
func ClassifyTimeOfDay(hour int, cfg *models.EngagementConfig) models.TimeOfDay {
	switch {
	case hour >= cfg.MorningStartHour && hour < cfg.MiddayStartHour:
		return models.TimeOfDayMorning
	case hour >= cfg.MiddayStartHour && hour < cfg.EveningStartHour:
		return models.TimeOfDayMidday
	case hour >= cfg.EveningStartHour && hour < cfg.EveningEndHour:
		return models.TimeOfDayEvening
	default:
		return models.TimeOfDayUnset
	}
}

// Reclassify derives both classification fields on a tracker in place after
// an activity event at the given hour.
func Reclassify(t *models.Tracker, eventHour int, cfg *models.EngagementConfig) {
	t.EngagementLevel = ClassifyLevel(t.TotalSessions, cfg)
	t.PreferredTimeOfDay = ClassifyTimeOfDay(eventHour, cfg)
}
