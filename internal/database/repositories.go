package database

import (
	"context"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

// TrackerRepositoryInterface is the tracker surface consumed by the
// engagement recorder and the dispatch loop. Enables in-memory fakes.
type TrackerRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tracker, error)
	Create(ctx context.Context, t *models.Tracker) error
	Update(ctx context.Context, t *models.Tracker) error
	LastActiveAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

// SettingsRepositoryInterface is the settings surface consumed by the
// dispatch loop, the report worker, and the settings handlers.
type SettingsRepositoryInterface interface {
	ListByFamily(ctx context.Context, family models.Family) ([]*models.NotificationSettings, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error)
	UpdatePreferences(ctx context.Context, s *models.NotificationSettings) error
	StampLastSent(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error
}

// NotificationRepositoryInterface is the notification sink surface.
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
}

// EngagementConfigRepositoryInterface provides classifier tuning.
type EngagementConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.EngagementConfig, error)
}

// Ensure concrete types implement the interfaces.
var (
	_ TrackerRepositoryInterface          = (*TrackerRepository)(nil)
	_ SettingsRepositoryInterface         = (*SettingsRepository)(nil)
	_ NotificationRepositoryInterface     = (*NotificationRepository)(nil)
	_ EngagementConfigRepositoryInterface = (*EngagementConfigRepository)(nil)
)
