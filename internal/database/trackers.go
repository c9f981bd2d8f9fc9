package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TrackerRepository handles engagement tracker database operations.
type TrackerRepository struct {
	db *DB
}

// NewTrackerRepository creates a new tracker repository.
func NewTrackerRepository(db *DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

const trackerColumns = `
	id, user_id, last_active_at, total_sessions, deep_study_count,
	quick_ask_count, emotional_tone_history, spiritual_theme_history,
	current_streak, longest_streak, streak_broken_at, engagement_level,
	preferred_time_of_day, created_at, updated_at
`

func scanTracker(row interface{ Scan(...any) error }) (*models.Tracker, error) {
	t := &models.Tracker{}
	var tones, themes pq.StringArray
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.LastActiveAt,
		&t.TotalSessions,
		&t.DeepStudyCount,
		&t.QuickAskCount,
		&tones,
		&themes,
		&t.CurrentStreak,
		&t.LongestStreak,
		&t.StreakBrokenAt,
		&t.EngagementLevel,
		&t.PreferredTimeOfDay,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.EmotionalToneHistory = tones
	t.SpiritualThemeHistory = themes
	return t, nil
}

// GetByUserID retrieves a tracker by user ID. Wraps sql.ErrNoRows for a user
// with no tracker yet.
func (r *TrackerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tracker, error) {
	query := `SELECT ` + trackerColumns + ` FROM trackers WHERE user_id = $1`

	t, err := scanTracker(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get tracker: %w", err)
	}
	return t, nil
}

// Create inserts a tracker for a user's first activity event.
func (r *TrackerRepository) Create(ctx context.Context, t *models.Tracker) error {
	query := `
		INSERT INTO trackers (` + trackerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		t.ID,
		t.UserID,
		t.LastActiveAt,
		t.TotalSessions,
		t.DeepStudyCount,
		t.QuickAskCount,
		pq.StringArray(t.EmotionalToneHistory),
		pq.StringArray(t.SpiritualThemeHistory),
		t.CurrentStreak,
		t.LongestStreak,
		t.StreakBrokenAt,
		t.EngagementLevel,
		t.PreferredTimeOfDay,
		now,
		now,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}
	return nil
}

// Update persists tracker mutations after an activity event.
func (r *TrackerRepository) Update(ctx context.Context, t *models.Tracker) error {
	query := `
		UPDATE trackers SET
			last_active_at = $1,
			total_sessions = $2,
			deep_study_count = $3,
			quick_ask_count = $4,
			emotional_tone_history = $5,
			spiritual_theme_history = $6,
			current_streak = $7,
			longest_streak = $8,
			streak_broken_at = $9,
			engagement_level = $10,
			preferred_time_of_day = $11,
			updated_at = $12
		WHERE id = $13
	`

	_, err := r.db.ExecContext(ctx, query,
		t.LastActiveAt,
		t.TotalSessions,
		t.DeepStudyCount,
		t.QuickAskCount,
		pq.StringArray(t.EmotionalToneHistory),
		pq.StringArray(t.SpiritualThemeHistory),
		t.CurrentStreak,
		t.LongestStreak,
		t.StreakBrokenAt,
		t.EngagementLevel,
		t.PreferredTimeOfDay,
		time.Now(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	return nil
}

// LastActiveAt returns the last activity timestamp for a user, or nil when
// the user has no tracker. Used by monthly-report eligibility.
func (r *TrackerRepository) LastActiveAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var last time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_active_at FROM trackers WHERE user_id = $1`, userID,
	).Scan(&last)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last active: %w", err)
	}
	return &last, nil
}
