package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is a completion certificate. Names are denormalized so the
// public verification page never needs to join against other records.
type Certificate struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	UserName         string    `json:"user_name"`
	CourseID         uuid.UUID `json:"course_id"`
	CourseName       string    `json:"course_name"`
	InstructorID     uuid.UUID `json:"instructor_id"`
	InstructorName   string    `json:"instructor_name"`
	TemplateID       string    `json:"template_id"`
	IssueDate        time.Time `json:"issue_date"`
	VerificationCode string    `json:"verification_code"`
	CreatedAt        time.Time `json:"created_at"`
}
