package workers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/notify"
	"github.com/gideonapp/engage/internal/queue"
	"github.com/gideonapp/engage/internal/services/ai"
	"github.com/google/uuid"
)

// Reporter processes weekly summary and monthly report jobs
type Reporter struct {
	generator    ai.ContentGenerator
	settingsRepo database.SettingsRepositoryInterface
	trackerRepo  database.TrackerRepositoryInterface
	notifyRepo   database.NotificationRepositoryInterface
	tuningRepo   database.EngagementConfigRepositoryInterface
	jobQueue     queue.JobQueue // For re-enqueueing jobs with delays
	now          func() time.Time
}

// NewReporter creates a new reporter
func NewReporter(
	generator ai.ContentGenerator,
	settingsRepo database.SettingsRepositoryInterface,
	trackerRepo database.TrackerRepositoryInterface,
	notifyRepo database.NotificationRepositoryInterface,
	tuningRepo database.EngagementConfigRepositoryInterface,
	jobQueue queue.JobQueue,
) *Reporter {
	return &Reporter{
		generator:    generator,
		settingsRepo: settingsRepo,
		trackerRepo:  trackerRepo,
		notifyRepo:   notifyRepo,
		tuningRepo:   tuningRepo,
		jobQueue:     jobQueue,
		now:          time.Now,
	}
}

// ProcessReportJob generates one summary notification. The job may be hours
// old by the time it runs, so eligibility is re-checked against the current
// settings row before anything is generated.
func (r *Reporter) ProcessReportJob(ctx context.Context, job *queue.Job) error {
	s, err := r.settingsRepo.GetByID(ctx, job.SettingsID)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Verify settings belong to the job's user
	if s.UserID != job.UserID {
		return fmt.Errorf("settings do not belong to user")
	}

	// Another sender stamped this period after the job was enqueued
	if !equalStamp(s.LastSent(job.Category), job.PrevSent) {
		log.Printf("Skipping %s job %s: period already handled", job.Type, job.ID)
		return nil
	}

	cfg, err := r.tuningRepo.Get(ctx)
	if err != nil {
		log.Printf("Failed to load engagement tuning, using defaults: %v", err)
		cfg = models.DefaultEngagementConfig()
	}

	lastActive, err := r.trackerRepo.LastActiveAt(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to read last activity: %w", err)
	}

	now := r.now().UTC()
	eligible, err := notify.Eligible(s, job.Category, lastActive, cfg, now)
	if err != nil {
		// The row went bad between enqueue and processing. Retrying cannot
		// fix stored data, so drop the job.
		log.Printf("Skipping %s job %s: invalid notification settings: %v", job.Type, job.ID, err)
		return nil
	}
	if !eligible {
		log.Printf("Skipping %s job %s: no longer eligible", job.Type, job.ID)
		return nil
	}

	var tracker *models.Tracker
	tracker, err = r.trackerRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("Failed to load tracker for job %s: %v", job.ID, err)
		}
		tracker = nil
	}

	content, err := r.generator.Generate(ctx, ai.Request{
		UserID:   job.UserID,
		Family:   job.Family,
		Category: job.Category,
		Tracker:  tracker,
	})
	if err != nil {
		return fmt.Errorf("failed to generate %s content: %w", job.Type, err)
	}

	notification := &models.Notification{
		ID:       uuid.New(),
		UserID:   job.UserID,
		Family:   job.Family,
		Category: job.Category,
		Title:    content.Title,
		Message:  content.Message,
	}
	if err := r.notifyRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	err = r.settingsRepo.StampLastSent(ctx, s.ID, job.Category, s.LastSent(job.Category), now)
	if errors.Is(err, database.ErrStampConflict) {
		log.Printf("Stamp conflict for %s job %s, treating as already sent", job.Type, job.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stamp last sent: %w", err)
	}

	log.Printf("Generated %s for user %s (notification %s)", job.Type, job.UserID, notification.ID)
	return nil
}

func equalStamp(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ProcessJob processes a job based on its type
func (r *Reporter) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), requeueing", job.ID, job.NotBefore)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to requeue early job: %v", nackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeWeeklySummary, queue.JobTypeMonthlyReport:
		if err := r.ProcessReportJob(ctx, job); err != nil {
			return r.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with intelligent retry logic
func (r *Reporter) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	// Quota errors should not retry immediately
	if ai.IsQuotaError(err) {
		log.Printf("Quota exceeded for %s job %s: %v", job.Type, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		delayedJob := r.delayedRetry(job, notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if r.jobQueue != nil {
			if enqueueErr := r.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Re-enqueued %s job %s for retry at %v (quota exhausted)", job.Type, job.ID, notBefore)
			return nil
		}

		log.Printf("Warning: no queue access, cannot re-enqueue job with delay")
		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limit errors retry with backoff via the delayed exchange
	if ai.IsRateLimitError(err) {
		log.Printf("Rate limited for %s job %s: %v", job.Type, job.ID, err)

		if job.CanRetry() && r.jobQueue != nil {
			retryDelay := ai.GetRetryDelay(err, job.RetryCount)
			notBefore := time.Now().Add(retryDelay)
			delayedJob := r.delayedRetry(job, notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := r.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued %s job %s for retry at %v", job.Type, job.ID, notBefore)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry for everything else
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", job.Type, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", job.Type, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

func (r *Reporter) delayedRetry(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		SettingsID: job.SettingsID,
		Family:     job.Family,
		Category:   job.Category,
		PrevSent:   job.PrevSent,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}
