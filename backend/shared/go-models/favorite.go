package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a resource-library item.
type Favorite struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}
