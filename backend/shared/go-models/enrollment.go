package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment grants a user access to a course. It exists only for a
// Purchase that reached the complete state, one per Purchase.
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	CreatedAt  time.Time `json:"created_at"`
}
