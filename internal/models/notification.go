package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a delivered notification record, read by the mobile client.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Family    Family     `json:"family"`
	Category  Category   `json:"category"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
