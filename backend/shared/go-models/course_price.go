package models

import (
	"time"

	"github.com/google/uuid"
)

// CoursePrice is the amount checkout charges for a course. InstructorID is
// the owner of the price; only they or an admin may change it.
type CoursePrice struct {
	Versioned

	CourseID     uuid.UUID `json:"course_id"`
	CourseName   string    `json:"course_name"`
	AmountCents  int64     `json:"amount_cents"`
	InstructorID uuid.UUID `json:"instructor_id"`
	UpdatedBy    uuid.UUID `json:"updated_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *CoursePrice) Amount() float64 {
	return CentsToAmount(c.AmountCents)
}

// CanBeEditedBy reports whether u may change the price.
func (c *CoursePrice) CanBeEditedBy(u *User) bool {
	return u.HasRole(RoleAdmin) || (u.HasRole(RoleInstructor) && u.ID == c.InstructorID)
}
