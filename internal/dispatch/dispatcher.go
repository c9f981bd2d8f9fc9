package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/notify"
	"github.com/gideonapp/engage/internal/queue"
	"github.com/gideonapp/engage/internal/retry"
	"github.com/gideonapp/engage/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultUserTimeout bounds inline content generation for one user so a slow
// provider cannot stall the whole run.
const DefaultUserTimeout = 45 * time.Second

// UserError records a per-user failure without failing the run.
type UserError struct {
	UserID uuid.UUID `json:"user_id"`
	Error  string    `json:"error"`
}

// Result summarizes one dispatch run.
type Result struct {
	Processed int         `json:"processed"`
	Skipped   int         `json:"skipped"`
	Errors    []UserError `json:"errors,omitempty"`
}

// Dispatcher walks every user's settings for one family and category,
// checks eligibility, and either generates the notification inline or hands
// it to the report queue. Summary categories go through the queue because
// their generation is heavier and tolerates delay.
type Dispatcher struct {
	settings      database.SettingsRepositoryInterface
	trackers      database.TrackerRepositoryInterface
	notifications database.NotificationRepositoryInterface
	tuning        database.EngagementConfigRepositoryInterface
	generator     ai.ContentGenerator
	jobs          queue.JobQueue
	locker        Locker
	logger        *zap.Logger
	userTimeout   time.Duration
}

// NewDispatcher creates a dispatcher over the given collaborators.
func NewDispatcher(
	settings database.SettingsRepositoryInterface,
	trackers database.TrackerRepositoryInterface,
	notifications database.NotificationRepositoryInterface,
	tuning database.EngagementConfigRepositoryInterface,
	generator ai.ContentGenerator,
	jobs queue.JobQueue,
	locker Locker,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		settings:      settings,
		trackers:      trackers,
		notifications: notifications,
		tuning:        tuning,
		generator:     generator,
		jobs:          jobs,
		locker:        locker,
		logger:        logger,
		userTimeout:   DefaultUserTimeout,
	}
}

// SetUserTimeout overrides the per-user generation timeout.
func (d *Dispatcher) SetUserTimeout(t time.Duration) {
	d.userTimeout = t
}

func isSummaryCategory(cat models.Category) bool {
	return cat == models.CategoryWeeklySummary || cat == models.CategoryMonthlyReport
}

// Run dispatches one family and category for every user at the given time.
// Per-user failures are collected in the result; only a failure to list the
// settings rows fails the run itself.
func (d *Dispatcher) Run(ctx context.Context, family models.Family, category models.Category, now time.Time) (*Result, error) {
	now = now.UTC()

	cfg, err := d.tuning.Get(ctx)
	if err != nil {
		d.logger.Warn("failed to load engagement tuning, using defaults", zap.Error(err))
		cfg = models.DefaultEngagementConfig()
	}

	rows, err := d.settings.ListByFamily(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification settings: %w", err)
	}

	result := &Result{}
	for _, s := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := d.dispatchUser(ctx, s, category, cfg, now)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, UserError{UserID: s.UserID, Error: err.Error()})
			d.logger.Error("dispatch failed for user",
				zap.String("user_id", s.UserID.String()),
				zap.String("family", string(family)),
				zap.String("category", string(category)),
				zap.Error(err),
			)
		case outcome:
			result.Processed++
		default:
			result.Skipped++
		}
	}

	d.logger.Info("dispatch run complete",
		zap.String("family", string(family)),
		zap.String("category", string(category)),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// dispatchUser handles one settings row. It returns (true, nil) when a
// notification was sent or enqueued, (false, nil) when the user was skipped.
func (d *Dispatcher) dispatchUser(ctx context.Context, listed *models.NotificationSettings, category models.Category, cfg *models.EngagementConfig, now time.Time) (bool, error) {
	acquired, err := d.locker.Acquire(ctx, listed.UserID, category)
	if err != nil {
		return false, err
	}
	if !acquired {
		// Another dispatcher holds this user right now.
		return false, nil
	}
	defer func() {
		if err := d.locker.Release(ctx, listed.UserID, category); err != nil {
			d.logger.Warn("failed to release dispatch lease",
				zap.String("user_id", listed.UserID.String()),
				zap.Error(err),
			)
		}
	}()

	// Re-fetch under the lease; the listed row may be stale.
	s, err := d.settings.GetByID(ctx, listed.ID)
	if err != nil {
		return false, fmt.Errorf("failed to re-read settings: %w", err)
	}

	lastActive, err := d.trackers.LastActiveAt(ctx, s.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to read last activity: %w", err)
	}

	eligible, err := notify.Eligible(s, category, lastActive, cfg, now)
	if err != nil {
		// A malformed stored cadence or weekday value. Fail closed for this
		// row and keep the run moving; the row needs repair, not a retry.
		d.logger.Warn("skipping user with invalid notification settings",
			zap.String("user_id", s.UserID.String()),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		return false, nil
	}
	if !eligible {
		return false, nil
	}

	if isSummaryCategory(category) {
		return d.enqueueSummary(ctx, s, category, now)
	}
	return d.sendInline(ctx, s, category, now)
}

func (d *Dispatcher) enqueueSummary(ctx context.Context, s *models.NotificationSettings, category models.Category, now time.Time) (bool, error) {
	jobType := queue.JobTypeWeeklySummary
	if category == models.CategoryMonthlyReport {
		jobType = queue.JobTypeMonthlyReport
	}

	job := queue.NewJob(jobType, s.UserID, s.ID, s.Family, category)
	job.PrevSent = s.LastSent(category)
	// Summary content is worthless once the period has clearly passed.
	notAfter := now.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := d.jobs.Enqueue(ctx, job); err != nil {
		return false, fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	return true, nil
}

func (d *Dispatcher) sendInline(ctx context.Context, s *models.NotificationSettings, category models.Category, now time.Time) (bool, error) {
	tracker, err := d.trackers.GetByUserID(ctx, s.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		d.logger.Warn("failed to load tracker for personalization",
			zap.String("user_id", s.UserID.String()),
			zap.Error(err),
		)
		tracker = nil
	}

	genCtx, cancel := context.WithTimeout(ctx, d.userTimeout)
	defer cancel()

	var content *ai.Content
	policy := retry.DefaultPolicy(ai.IsRetryable)
	err = policy.Do(genCtx, func() error {
		var genErr error
		content, genErr = d.generator.Generate(genCtx, ai.Request{
			UserID:   s.UserID,
			Family:   s.Family,
			Category: category,
			Tracker:  tracker,
		})
		return genErr
	})
	if err != nil {
		return false, fmt.Errorf("failed to generate content: %w", err)
	}

	notification := &models.Notification{
		ID:       uuid.New(),
		UserID:   s.UserID,
		Family:   s.Family,
		Category: category,
		Title:    content.Title,
		Message:  content.Message,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		return false, fmt.Errorf("failed to store notification: %w", err)
	}

	err = d.settings.StampLastSent(ctx, s.ID, category, s.LastSent(category), now)
	if errors.Is(err, database.ErrStampConflict) {
		// Someone else stamped this period between our read and write. The
		// notification already exists, so count the user as handled.
		d.logger.Warn("last-sent stamp conflict, treating as already sent",
			zap.String("user_id", s.UserID.String()),
			zap.String("category", string(category)),
		)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stamp last sent: %w", err)
	}
	return true, nil
}
