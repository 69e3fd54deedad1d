// go-repositories/purchase_repository.go

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// CheckoutResult is what CompleteCheckout leaves behind in the database.
// EnrollmentCreated is false on a redelivered event.
type CheckoutResult struct {
	Purchase          *models.Purchase
	Enrollment        *models.Enrollment
	EnrollmentCreated bool
}

type PurchaseRepository interface {
	CreateOpen(ctx context.Context, p *models.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Purchase, error)
	CompleteCheckout(ctx context.Context, p *models.Purchase) (*CheckoutResult, error)
	UpdateIfVersion(ctx context.Context, p *models.Purchase, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Purchase) error) error
	ExpireOpenBefore(ctx context.Context, cutoff time.Time) (int64, error)
	SalesByCourse(ctx context.Context, courseID uuid.UUID) (*models.CourseSales, error)
}

type purchaseRepo struct {
	versionedTable[*models.Purchase]
	db DB
}

func NewPurchaseRepository(db DB) PurchaseRepository {
	r := &purchaseRepo{db: db}
	selectStmt := baseSelectPurchase() + " WHERE id=$1"
	r.versionedTable = newVersionedTable(db, selectStmt, scanPurchase)
	return r
}

func baseSelectPurchase() string {
	return `
		SELECT id, user_id, course_id, amount_cents, stripe_session_id, status,
		       expired_locally, created_at, updated_at, row_version
		FROM purchases`
}

func scanPurchase(row pgx.Row) (*models.Purchase, error) {
	var (
		p      models.Purchase
		status string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CourseID, &p.AmountCents, &p.StripeSessionID, &status,
		&p.ExpiredLocally, &p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Status = models.PurchaseStatusType(status)
	return &p, nil
}

// CreateOpen records a freshly created checkout session. A second call for
// the same session id is a no-op.
func (r *purchaseRepo) CreateOpen(ctx context.Context, p *models.Purchase) error {
	p.Status = models.PurchaseStatusOpen
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchases (
			id, user_id, course_id, amount_cents, stripe_session_id, status,
			created_at, updated_at, row_version
		) VALUES ($1, $2, $3, $4, $5, 'open', NOW(), NOW(), 1)
		ON CONFLICT (stripe_session_id) DO NOTHING
	`, p.ID, p.UserID, p.CourseID, p.AmountCents, p.StripeSessionID)
	return err
}

func (r *purchaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	return r.load(ctx, id)
}

func (r *purchaseRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Purchase, error) {
	row := r.db.QueryRow(ctx, baseSelectPurchase()+" WHERE stripe_session_id=$1", sessionID)
	return scanPurchase(row)
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Purchase, error) {
	rows, err := r.db.Query(ctx, baseSelectPurchase()+" WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

/*
CompleteCheckout upserts the purchase for p.StripeSessionID as complete and
creates its enrollment, in a single transaction. An open purchase for the
session is promoted, and so is one the local sweep expired, since Stripe
still charged for it. An already complete purchase is left alone and its
existing enrollment returned. A purchase Stripe itself expired cannot be
completed and yields utils.ErrInvalidStatusTransition alongside the stored
purchase.
*/
func (r *purchaseRepo) CompleteCheckout(ctx context.Context, p *models.Purchase) (*CheckoutResult, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO purchases (
			id, user_id, course_id, amount_cents, stripe_session_id, status,
			created_at, updated_at, row_version
		) VALUES ($1, $2, $3, $4, $5, 'complete', NOW(), NOW(), 1)
		ON CONFLICT (stripe_session_id) DO UPDATE SET
			status='complete',
			expired_locally=FALSE,
			amount_cents=EXCLUDED.amount_cents,
			updated_at=NOW(),
			row_version=purchases.row_version+1
		WHERE purchases.status='open'
		   OR (purchases.status='expired' AND purchases.expired_locally)
	`, p.ID, p.UserID, p.CourseID, p.AmountCents, p.StripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("upsert purchase: %w", err)
	}

	stored, err := scanPurchase(tx.QueryRow(ctx, baseSelectPurchase()+" WHERE stripe_session_id=$1 FOR UPDATE", p.StripeSessionID))
	if err != nil {
		return nil, fmt.Errorf("reload purchase: %w", err)
	}
	if stored == nil {
		return nil, fmt.Errorf("purchase for session %s vanished inside transaction", p.StripeSessionID)
	}
	if stored.Status != models.PurchaseStatusComplete {
		return &CheckoutResult{Purchase: stored}, utils.ErrInvalidStatusTransition
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, purchase_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (purchase_id) DO NOTHING
	`, uuid.New(), stored.UserID, stored.CourseID, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	enrollment, err := scanEnrollment(tx.QueryRow(ctx, baseSelectEnrollment()+" WHERE purchase_id=$1", stored.ID))
	if err != nil {
		return nil, fmt.Errorf("reload enrollment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &CheckoutResult{
		Purchase:          stored,
		Enrollment:        enrollment,
		EnrollmentCreated: tag.RowsAffected() == 1,
	}, nil
}

func (r *purchaseRepo) UpdateIfVersion(ctx context.Context, p *models.Purchase, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE purchases SET
			status=$1, amount_cents=$2, expired_locally=$3,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$4 AND row_version=$5`,
		string(p.Status), p.AmountCents, p.ExpiredLocally, p.ID, expected,
	)
}

func (r *purchaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Purchase) error) error {
	return r.updateWithRetry(ctx, id, r.UpdateIfVersion, mutate)
}

// ExpireOpenBefore expires abandoned checkouts in bulk. They are marked as
// expired locally so a late completion can still enroll the buyer.
func (r *purchaseRepo) ExpireOpenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchases SET
			status='expired', expired_locally=TRUE,
			updated_at=NOW(), row_version=row_version+1
		WHERE status='open' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *purchaseRepo) SalesByCourse(ctx context.Context, courseID uuid.UUID) (*models.CourseSales, error) {
	sales := &models.CourseSales{CourseID: courseID}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0), MAX(updated_at)
		FROM purchases
		WHERE course_id=$1 AND status='complete'`, courseID,
	).Scan(&sales.CompletedCount, &sales.RevenueCents, &sales.LastPurchaseAt)
	if err != nil {
		return nil, err
	}
	return sales, nil
}
