package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseStatusType mirrors the lifecycle of a Stripe Checkout Session.
type PurchaseStatusType string

const (
	PurchaseStatusOpen     PurchaseStatusType = "open"
	PurchaseStatusComplete PurchaseStatusType = "complete"
	PurchaseStatusExpired  PurchaseStatusType = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s PurchaseStatusType) IsTerminal() bool {
	return s == PurchaseStatusComplete || s == PurchaseStatusExpired
}

// CanTransitionTo allows only open -> complete and open -> expired.
func (s PurchaseStatusType) CanTransitionTo(next PurchaseStatusType) bool {
	if s != PurchaseStatusOpen {
		return false
	}
	return next == PurchaseStatusComplete || next == PurchaseStatusExpired
}

// Purchase records one checkout session for one course. Amounts are kept in
// minor units (cents) so no float rounding ever reaches the database.
type Purchase struct {
	Versioned

	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	CourseID        uuid.UUID          `json:"course_id"`
	AmountCents     int64              `json:"amount_cents"`
	StripeSessionID string             `json:"stripe_session_id"`
	Status          PurchaseStatusType `json:"status"`
	ExpiredLocally  bool               `json:"-"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Completable reports whether a checkout.session.completed event may still
// complete the purchase. Expiry reported by Stripe is final; expiry by the
// local sweep is not.
func (p *Purchase) Completable() bool {
	switch p.Status {
	case PurchaseStatusOpen:
		return true
	case PurchaseStatusExpired:
		return p.ExpiredLocally
	}
	return false
}

// Amount is the purchase total in decimal currency units (4999 -> 49.99).
func (p *Purchase) Amount() float64 {
	return CentsToAmount(p.AmountCents)
}

// CentsToAmount converts the processor's minor-unit integer to a decimal.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// CourseSales aggregates completed purchases of one course.
type CourseSales struct {
	CourseID       uuid.UUID  `json:"course_id"`
	CompletedCount int64      `json:"completed_count"`
	RevenueCents   int64      `json:"revenue_cents"`
	LastPurchaseAt *time.Time `json:"last_purchase_at,omitempty"`
}
