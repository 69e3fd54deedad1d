// go-repositories/course_price_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type CoursePriceRepository interface {
	Get(ctx context.Context, courseID uuid.UUID) (*models.CoursePrice, error)
	Upsert(ctx context.Context, p *models.CoursePrice) (*models.CoursePrice, error)
}

type coursePriceRepo struct {
	db DB
}

func NewCoursePriceRepository(db DB) CoursePriceRepository {
	return &coursePriceRepo{db: db}
}

const coursePriceColumns = `course_id, course_name, amount_cents, instructor_id, updated_by,
		       created_at, updated_at, row_version`

func scanCoursePrice(row pgx.Row) (*models.CoursePrice, error) {
	var p models.CoursePrice
	err := row.Scan(
		&p.CourseID, &p.CourseName, &p.AmountCents, &p.InstructorID, &p.UpdatedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *coursePriceRepo) Get(ctx context.Context, courseID uuid.UUID) (*models.CoursePrice, error) {
	return scanCoursePrice(r.db.QueryRow(ctx,
		"SELECT "+coursePriceColumns+" FROM course_prices WHERE course_id=$1", courseID))
}

// Upsert creates or reprices a course. The owning instructor of an existing
// row is never changed.
func (r *coursePriceRepo) Upsert(ctx context.Context, p *models.CoursePrice) (*models.CoursePrice, error) {
	return scanCoursePrice(r.db.QueryRow(ctx, `
		INSERT INTO course_prices (
			course_id, course_name, amount_cents, instructor_id, updated_by,
			created_at, updated_at, row_version
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW(), 1)
		ON CONFLICT (course_id) DO UPDATE SET
			course_name=EXCLUDED.course_name,
			amount_cents=EXCLUDED.amount_cents,
			updated_by=EXCLUDED.updated_by,
			updated_at=NOW(),
			row_version=course_prices.row_version+1
		RETURNING `+coursePriceColumns,
		p.CourseID, p.CourseName, p.AmountCents, p.InstructorID, p.UpdatedBy,
	))
}
