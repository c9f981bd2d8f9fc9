package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

// ErrStampConflict is returned when a conditional last-sent stamp write
// loses to a concurrent dispatch run. Callers treat it as a successful
// no-op: the other run delivered.
var ErrStampConflict = errors.New("last-sent stamp already updated by another run")

// SettingsRepository handles notification settings database operations.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `
	id, user_id, family, morning_enabled, midday_enabled, evening_enabled,
	suggestions_enabled, weekly_summary_enabled, monthly_report_enabled,
	suggestion_frequency, weekly_summary_day,
	last_morning_sent, last_midday_sent, last_evening_sent,
	last_suggestion_sent, last_weekly_summary_sent, last_monthly_report_sent,
	created_at, updated_at
`

// stampColumn maps a category to its last-sent column. Categories are a
// closed enum; anything else is a programming error surfaced as such.
func stampColumn(cat models.Category) (string, error) {
	switch cat {
	case models.CategoryMorning:
		return "last_morning_sent", nil
	case models.CategoryMidday:
		return "last_midday_sent", nil
	case models.CategoryEvening:
		return "last_evening_sent", nil
	case models.CategorySuggestion:
		return "last_suggestion_sent", nil
	case models.CategoryWeeklySummary:
		return "last_weekly_summary_sent", nil
	case models.CategoryMonthlyReport:
		return "last_monthly_report_sent", nil
	default:
		return "", fmt.Errorf("unknown category: %s", cat)
	}
}

func scanSettings(row interface{ Scan(...any) error }) (*models.NotificationSettings, error) {
	s := &models.NotificationSettings{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Family,
		&s.MorningEnabled,
		&s.MiddayEnabled,
		&s.EveningEnabled,
		&s.SuggestionsEnabled,
		&s.WeeklySummaryEnabled,
		&s.MonthlyReportEnabled,
		&s.SuggestionFrequency,
		&s.WeeklySummaryDay,
		&s.LastMorningSent,
		&s.LastMiddaySent,
		&s.LastEveningSent,
		&s.LastSuggestionSent,
		&s.LastWeeklySent,
		&s.LastMonthlySent,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByFamily returns every user's settings record for a family. The
// dispatch loop iterates this snapshot and re-fetches per user before
// acting.
func (r *SettingsRepository) ListByFamily(ctx context.Context, family models.Family) ([]*models.NotificationSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM notification_settings WHERE family = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, family)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*models.NotificationSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return out, nil
}

// GetByID re-fetches one settings record. Used for the per-user snapshot
// read immediately before eligibility evaluation.
func (r *SettingsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM notification_settings WHERE id = $1`

	s, err := scanSettings(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// GetOrCreate fetches a user's settings for a family, lazily inserting
// defaults on first access.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM notification_settings WHERE user_id = $1 AND family = $2`

	s, err := scanSettings(r.db.QueryRowContext(ctx, query, userID, family))
	if err == nil {
		return s, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	s = models.DefaultSettings(userID, family)
	if err := r.create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SettingsRepository) create(ctx context.Context, s *models.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id, family) DO NOTHING
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.Family,
		s.MorningEnabled, s.MiddayEnabled, s.EveningEnabled,
		s.SuggestionsEnabled, s.WeeklySummaryEnabled, s.MonthlyReportEnabled,
		s.SuggestionFrequency, s.WeeklySummaryDay,
		s.LastMorningSent, s.LastMiddaySent, s.LastEveningSent,
		s.LastSuggestionSent, s.LastWeeklySent, s.LastMonthlySent,
		now, now,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if isNoRows(err) {
		// Lost a create race; read the winner's row.
		won, gerr := scanSettings(r.db.QueryRowContext(ctx,
			`SELECT `+settingsColumns+` FROM notification_settings WHERE user_id = $1 AND family = $2`,
			s.UserID, s.Family))
		if gerr != nil {
			return fmt.Errorf("failed to read settings after create race: %w", gerr)
		}
		*s = *won
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	return nil
}

// UpdatePreferences persists flag and cadence changes from the settings API.
// Last-sent stamps are never written through this path.
func (r *SettingsRepository) UpdatePreferences(ctx context.Context, s *models.NotificationSettings) error {
	query := `
		UPDATE notification_settings SET
			morning_enabled = $1,
			midday_enabled = $2,
			evening_enabled = $3,
			suggestions_enabled = $4,
			weekly_summary_enabled = $5,
			monthly_report_enabled = $6,
			suggestion_frequency = $7,
			weekly_summary_day = $8,
			updated_at = $9
		WHERE id = $10
	`

	_, err := r.db.ExecContext(ctx, query,
		s.MorningEnabled, s.MiddayEnabled, s.EveningEnabled,
		s.SuggestionsEnabled, s.WeeklySummaryEnabled, s.MonthlyReportEnabled,
		s.SuggestionFrequency, s.WeeklySummaryDay,
		time.Now(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// StampLastSent conditionally writes the last-sent stamp for a category.
// The write succeeds only if the stored stamp still equals prev (the value
// read at eligibility time); otherwise ErrStampConflict is returned. This
// compare-and-set is what makes concurrent dispatch runs at-most-once.
func (r *SettingsRepository) StampLastSent(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error {
	col, err := stampColumn(cat)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE notification_settings
		SET %s = $1, updated_at = $2
		WHERE id = $3 AND %s IS NOT DISTINCT FROM $4
	`, col, col)

	res, err := r.db.ExecContext(ctx, query, sent, time.Now(), id, prev)
	if err != nil {
		return fmt.Errorf("failed to stamp %s: %w", col, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check stamp result: %w", err)
	}
	if affected == 0 {
		return ErrStampConflict
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
