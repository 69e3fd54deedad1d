package dtos

import (
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
)

// IssueCertificateRequest carries the display names as the caller knows
// them; the course catalog lives elsewhere. The recipient is always the
// authenticated user.
type IssueCertificateRequest struct {
	CourseID       uuid.UUID `json:"course_id" validate:"required"`
	CourseName     string    `json:"course_name" validate:"required,max=300"`
	InstructorID   uuid.UUID `json:"instructor_id" validate:"required"`
	InstructorName string    `json:"instructor_name" validate:"required,max=200"`
	TemplateID     string    `json:"template_id" validate:"omitempty,max=100"`
}

type IssueCertificateResponse struct {
	Certificate *models.Certificate `json:"certificate"`
	Created     bool                `json:"created"`
}

type ListCertificatesResponse struct {
	Certificates []*models.Certificate `json:"certificates"`
}

// VerifyCertificateResponse is public, so it leaves out user and instructor ids.
type VerifyCertificateResponse struct {
	Valid            bool   `json:"valid"`
	UserName         string `json:"user_name"`
	CourseName       string `json:"course_name"`
	InstructorName   string `json:"instructor_name"`
	IssueDate        string `json:"issue_date"`
	VerificationCode string `json:"verification_code"`
}

func NewVerifyCertificateResponse(c *models.Certificate) VerifyCertificateResponse {
	return VerifyCertificateResponse{
		Valid:            true,
		UserName:         c.UserName,
		CourseName:       c.CourseName,
		InstructorName:   c.InstructorName,
		IssueDate:        c.IssueDate.Format("2006-01-02"),
		VerificationCode: c.VerificationCode,
	}
}
