package queue

import (
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeWeeklySummary generates one weekly summary notification
	JobTypeWeeklySummary JobType = "weekly_summary"
	// JobTypeMonthlyReport generates one monthly report notification
	JobTypeMonthlyReport JobType = "monthly_report"
)

// Job represents a content generation job in the queue. PrevSent carries the
// last-sent stamp observed at enqueue time so the worker can detect that
// another sender already handled this period.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Type       JobType         `json:"type"`
	UserID     uuid.UUID       `json:"user_id"`
	SettingsID uuid.UUID       `json:"settings_id"`
	Family     models.Family   `json:"family"`
	Category   models.Category `json:"category"`
	PrevSent   *time.Time      `json:"prev_sent,omitempty"`
	NotBefore  *time.Time      `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time      `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any  `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID, settingsID uuid.UUID, family models.Family, category models.Category) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		SettingsID: settingsID,
		Family:     family,
		Category:   category,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now().UTC(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
