// Package dispatch runs the scheduled fan-out that turns notification
// settings into generated notifications.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLeaseTTL bounds how long a crashed dispatcher can block a user.
const DefaultLeaseTTL = 2 * time.Minute

// Locker grants short exclusive leases on a per-user, per-category slot so
// overlapping dispatch runs do not double-process the same user.
type Locker interface {
	// Acquire returns true when the lease was obtained.
	Acquire(ctx context.Context, userID uuid.UUID, category models.Category) (bool, error)
	// Release drops the lease early. Expiry handles the crash case.
	Release(ctx context.Context, userID uuid.UUID, category models.Category) error
}

// RedisLocker implements Locker with Redis SET NX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker on an existing Redis client.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func leaseKey(userID uuid.UUID, category models.Category) string {
	return fmt.Sprintf("dispatch:%s:%s", userID, category)
}

// Acquire takes the lease if free.
func (l *RedisLocker) Acquire(ctx context.Context, userID uuid.UUID, category models.Category) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey(userID, category), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dispatch lease: %w", err)
	}
	return ok, nil
}

// Release deletes the lease key.
func (l *RedisLocker) Release(ctx context.Context, userID uuid.UUID, category models.Category) error {
	if err := l.client.Del(ctx, leaseKey(userID, category)).Err(); err != nil {
		return fmt.Errorf("failed to release dispatch lease: %w", err)
	}
	return nil
}

var _ Locker = (*RedisLocker)(nil)
