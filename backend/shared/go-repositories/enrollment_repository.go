// go-repositories/enrollment_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// Enrollments are only ever written by PurchaseRepository.CompleteCheckout,
// so this repository is read-only.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error)
}

type enrollmentRepo struct {
	db DB
}

func NewEnrollmentRepository(db DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func baseSelectEnrollment() string {
	return `
		SELECT id, user_id, course_id, purchase_id, created_at
		FROM enrollments`
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.PurchaseID, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(ctx, baseSelectEnrollment()+" WHERE id=$1", id))
}

// GetByUserAndCourse returns the earliest enrollment when a user bought the
// same course more than once.
func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(ctx,
		baseSelectEnrollment()+" WHERE user_id=$1 AND course_id=$2 ORDER BY created_at ASC LIMIT 1",
		userID, courseID,
	))
}

func (r *enrollmentRepo) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*models.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(ctx, baseSelectEnrollment()+" WHERE purchase_id=$1", purchaseID))
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	rows, err := r.db.Query(ctx, baseSelectEnrollment()+" WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
