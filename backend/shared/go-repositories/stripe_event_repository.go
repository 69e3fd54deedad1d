// go-repositories/stripe_event_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
)

type StripeEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// Record is idempotent: recording the same event twice is not an error.
	Record(ctx context.Context, e *models.StripeEvent) error
}

type stripeEventRepo struct {
	db DB
}

func NewStripeEventRepository(db DB) StripeEventRepository {
	return &stripeEventRepo{db: db}
}

func (r *stripeEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stripe_events WHERE event_id=$1)`, eventID,
	).Scan(&exists)
	return exists, err
}

func (r *stripeEventRepo) Record(ctx context.Context, e *models.StripeEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stripe_events (event_id, event_type, received_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.EventType)
	return err
}
