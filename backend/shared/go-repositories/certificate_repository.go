// go-repositories/certificate_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

const CertificatesVerificationCodeKey = "certificates_verification_code_key"

type CertificateRepository interface {
	// CreateIfAbsent inserts c unless the user already holds a certificate
	// for c.CourseID. It returns the stored certificate and whether it was
	// created by this call. A verification code collision surfaces as a
	// unique violation on CertificatesVerificationCodeKey.
	CreateIfAbsent(ctx context.Context, c *models.Certificate) (*models.Certificate, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Certificate, error)
	GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Certificate, error)
}

type certificateRepo struct {
	db DB
}

func NewCertificateRepository(db DB) CertificateRepository {
	return &certificateRepo{db: db}
}

func baseSelectCertificate() string {
	return `
		SELECT id, user_id, user_name, course_id, course_name,
		       instructor_id, instructor_name, template_id, issue_date,
		       verification_code, created_at
		FROM certificates`
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(
		&c.ID, &c.UserID, &c.UserName, &c.CourseID, &c.CourseName,
		&c.InstructorID, &c.InstructorName, &c.TemplateID, &c.IssueDate,
		&c.VerificationCode, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *certificateRepo) CreateIfAbsent(ctx context.Context, c *models.Certificate) (*models.Certificate, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO certificates (
			id, user_id, user_name, course_id, course_name,
			instructor_id, instructor_name, template_id, issue_date,
			verification_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, course_id) DO NOTHING
	`,
		c.ID, c.UserID, c.UserName, c.CourseID, c.CourseName,
		c.InstructorID, c.InstructorName, c.TemplateID, c.IssueDate,
		c.VerificationCode,
	)
	if err != nil {
		return nil, false, err
	}

	stored, err := r.GetByUserAndCourse(ctx, c.UserID, c.CourseID)
	if err != nil {
		return nil, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

func (r *certificateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	return scanCertificate(r.db.QueryRow(ctx, baseSelectCertificate()+" WHERE id=$1", id))
}

func (r *certificateRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Certificate, error) {
	return scanCertificate(r.db.QueryRow(ctx,
		baseSelectCertificate()+" WHERE user_id=$1 AND course_id=$2", userID, courseID))
}

func (r *certificateRepo) GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error) {
	return scanCertificate(r.db.QueryRow(ctx, baseSelectCertificate()+" WHERE verification_code=$1", code))
}

func (r *certificateRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Certificate, error) {
	rows, err := r.db.Query(ctx, baseSelectCertificate()+" WHERE user_id=$1 ORDER BY issue_date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Certificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
