package dtos

import (
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
)

// CreateCheckoutRequest only names the course; the amount charged comes
// from its stored price.
type CreateCheckoutRequest struct {
	CourseID uuid.UUID `json:"course_id" validate:"required"`
}

// SetCoursePriceRequest is in minor units. Stripe refuses USD charges below
// 50 cents.
type SetCoursePriceRequest struct {
	CourseName  string `json:"course_name" validate:"required,max=300"`
	AmountCents int64  `json:"amount_cents" validate:"required,gte=50,lte=10000000"`
}

type CoursePriceResponse struct {
	CourseID     uuid.UUID `json:"course_id"`
	CourseName   string    `json:"course_name"`
	Amount       float64   `json:"amount"`
	AmountCents  int64     `json:"amount_cents"`
	InstructorID uuid.UUID `json:"instructor_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewCoursePriceResponse(p *models.CoursePrice) CoursePriceResponse {
	return CoursePriceResponse{
		CourseID:     p.CourseID,
		CourseName:   p.CourseName,
		Amount:       p.Amount(),
		AmountCents:  p.AmountCents,
		InstructorID: p.InstructorID,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CreateCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PurchaseResponse exposes the amount in currency units, e.g. 49.99.
type PurchaseResponse struct {
	ID        uuid.UUID                 `json:"id"`
	CourseID  uuid.UUID                 `json:"course_id"`
	Amount    float64                   `json:"amount"`
	Status    models.PurchaseStatusType `json:"status"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

func NewPurchaseResponse(p *models.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:        p.ID,
		CourseID:  p.CourseID,
		Amount:    p.Amount(),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type ListPurchasesResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
}

type ListEnrollmentsResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
}

type CourseSalesResponse struct {
	CourseID       uuid.UUID  `json:"course_id"`
	CompletedCount int64      `json:"completed_count"`
	Revenue        float64    `json:"revenue"`
	LastPurchaseAt *time.Time `json:"last_purchase_at,omitempty"`
}

func NewCourseSalesResponse(s *models.CourseSales) CourseSalesResponse {
	return CourseSalesResponse{
		CourseID:       s.CourseID,
		CompletedCount: s.CompletedCount,
		Revenue:        models.CentsToAmount(s.RevenueCents),
		LastPurchaseAt: s.LastPurchaseAt,
	}
}
