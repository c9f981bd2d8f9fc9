package engagement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/clock"
	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder applies activity events to per-user trackers. One event touches
// exactly one user's row; there is no cross-user shared state.
type Recorder struct {
	trackers database.TrackerRepositoryInterface
	tuning   database.EngagementConfigRepositoryInterface
	logger   *zap.Logger
}

// NewRecorder creates an activity recorder.
func NewRecorder(trackers database.TrackerRepositoryInterface, tuning database.EngagementConfigRepositoryInterface, logger *zap.Logger) *Recorder {
	return &Recorder{trackers: trackers, tuning: tuning, logger: logger}
}

// Record processes one activity event at now: bumps session counters,
// appends bounded tone/theme history, advances the streak, reclassifies,
// and persists. Returns the updated tracker.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, kind models.ActivityKind, tone, theme string, now time.Time) (*models.Tracker, error) {
	cfg, err := r.tuning.Get(ctx)
	if err != nil {
		// Tuning read failures should not drop activity events.
		r.logger.Warn("engagement_tuning_unavailable", zap.Error(err))
		cfg = models.DefaultEngagementConfig()
	}

	t, err := r.trackers.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to load tracker: %w", err)
		}
		t = r.firstEvent(userID, kind, tone, theme, now, cfg)
		if err := r.trackers.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to create tracker: %w", err)
		}
		r.logger.Info("tracker_created",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
		)
		return t, nil
	}

	state := AdvanceStreak(StreakState{
		Current:  t.CurrentStreak,
		Longest:  t.LongestStreak,
		BrokenAt: t.StreakBrokenAt,
	}, t.LastActiveAt, now)

	t.CurrentStreak = state.Current
	t.LongestStreak = state.Longest
	t.StreakBrokenAt = state.BrokenAt
	t.TotalSessions++
	r.bumpKind(t, kind)
	t.EmotionalToneHistory = models.AppendBounded(t.EmotionalToneHistory, tone)
	t.SpiritualThemeHistory = models.AppendBounded(t.SpiritualThemeHistory, theme)
	Reclassify(t, clock.HourOf(now), cfg)
	t.LastActiveAt = now

	if err := r.trackers.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tracker: %w", err)
	}
	return t, nil
}

func (r *Recorder) firstEvent(userID uuid.UUID, kind models.ActivityKind, tone, theme string, now time.Time, cfg *models.EngagementConfig) *models.Tracker {
	streak := NewStreak()
	t := &models.Tracker{
		ID:                    uuid.New(),
		UserID:                userID,
		LastActiveAt:          now,
		TotalSessions:         1,
		EmotionalToneHistory:  models.AppendBounded(nil, tone),
		SpiritualThemeHistory: models.AppendBounded(nil, theme),
		CurrentStreak:         streak.Current,
		LongestStreak:         streak.Longest,
		PreferredTimeOfDay:    models.TimeOfDayUnset,
	}
	r.bumpKind(t, kind)
	Reclassify(t, clock.HourOf(now), cfg)
	return t
}

func (r *Recorder) bumpKind(t *models.Tracker, kind models.ActivityKind) {
	switch kind {
	case models.ActivityDeepStudy:
		t.DeepStudyCount++
	case models.ActivityQuickAsk:
		t.QuickAskCount++
	}
}
