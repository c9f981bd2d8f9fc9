package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/models"
)

const defaultEngagementConfigKey = "default"

// EngagementConfigRepository stores classifier tuning (thresholds, hour
// buckets, activity window) so product can adjust it without a deploy.
type EngagementConfigRepository struct {
	db *DB
}

// NewEngagementConfigRepository creates a new engagement config repository.
func NewEngagementConfigRepository(db *DB) *EngagementConfigRepository {
	return &EngagementConfigRepository{db: db}
}

// Get retrieves the tuning config, falling back to defaults when none is
// stored. Engines always receive a usable config.
func (r *EngagementConfigRepository) Get(ctx context.Context) (*models.EngagementConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, moderate_sessions, high_sessions,
			morning_start_hour, midday_start_hour, evening_start_hour, evening_end_hour,
			activity_window_days, created_at, updated_at
		FROM engagement_config WHERE config_key = $1
	`, defaultEngagementConfigKey)

	c := &models.EngagementConfig{}
	err := row.Scan(
		&c.ConfigKey, &c.ModerateSessions, &c.HighSessions,
		&c.MorningStartHour, &c.MiddayStartHour, &c.EveningStartHour, &c.EveningEndHour,
		&c.ActivityWindowDays, &c.CreatedAt, &c.UpdatedAt,
	)
	if isNoRows(err) {
		return models.DefaultEngagementConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get engagement config: %w", err)
	}
	return c, nil
}

// Set upserts the tuning config.
func (r *EngagementConfigRepository) Set(ctx context.Context, c *models.EngagementConfig) error {
	if c.ModerateSessions <= 0 || c.HighSessions <= c.ModerateSessions {
		return fmt.Errorf("invalid session thresholds: moderate=%d high=%d", c.ModerateSessions, c.HighSessions)
	}
	if c.ActivityWindowDays <= 0 {
		return fmt.Errorf("activity window must be positive: %d", c.ActivityWindowDays)
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO engagement_config (config_key, moderate_sessions, high_sessions,
			morning_start_hour, midday_start_hour, evening_start_hour, evening_end_hour,
			activity_window_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (config_key) DO UPDATE SET
			moderate_sessions = EXCLUDED.moderate_sessions,
			high_sessions = EXCLUDED.high_sessions,
			morning_start_hour = EXCLUDED.morning_start_hour,
			midday_start_hour = EXCLUDED.midday_start_hour,
			evening_start_hour = EXCLUDED.evening_start_hour,
			evening_end_hour = EXCLUDED.evening_end_hour,
			activity_window_days = EXCLUDED.activity_window_days,
			updated_at = EXCLUDED.updated_at
	`, defaultEngagementConfigKey, c.ModerateSessions, c.HighSessions,
		c.MorningStartHour, c.MiddayStartHour, c.EveningStartHour, c.EveningEndHour,
		c.ActivityWindowDays, now, now)
	if err != nil {
		return fmt.Errorf("set engagement config: %w", err)
	}
	return nil
}
