package services

import (
	"context"
	"fmt"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CertificateService struct {
	certRepo       repositories.CertificateRepository
	enrollmentRepo repositories.EnrollmentRepository
	notifications  *NotificationService
	mailer         Mailer
	metrics        *metrics.Metrics

	// newCode is swapped in tests to force collisions.
	newCode func() string
	now     func() time.Time
}

func NewCertificateService(
	certRepo repositories.CertificateRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	notifications *NotificationService,
	mailer Mailer,
	m *metrics.Metrics,
) *CertificateService {
	return &CertificateService{
		certRepo:       certRepo,
		enrollmentRepo: enrollmentRepo,
		notifications:  notifications,
		mailer:         mailer,
		metrics:        m,
		newCode: func() string {
			return utils.VerificationCode(constants.VerificationCodeGroups, constants.VerificationCodeGroupLength)
		},
		now: time.Now,
	}
}

/*
Issue grants user a certificate for req.CourseID. The user must be enrolled
in the course. Issuing twice returns the first certificate unchanged with
created=false.
*/
func (s *CertificateService) Issue(ctx context.Context, user *models.User, req dtos.IssueCertificateRequest) (*models.Certificate, bool, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, user.ID, req.CourseID)
	if err != nil {
		return nil, false, utils.NewInternalError("Could not load enrollment", err)
	}
	if enrollment == nil {
		return nil, false, forbiddenError("You are not enrolled in this course")
	}

	templateID := req.TemplateID
	if templateID == "" {
		templateID = constants.DefaultCertificateTemplateID
	}

	var lastErr error
	for attempt := 1; attempt <= constants.VerificationCodeMaxAttempts; attempt++ {
		candidate := &models.Certificate{
			ID:               uuid.New(),
			UserID:           user.ID,
			UserName:         user.Name,
			CourseID:         req.CourseID,
			CourseName:       req.CourseName,
			InstructorID:     req.InstructorID,
			InstructorName:   req.InstructorName,
			TemplateID:       templateID,
			IssueDate:        s.now().UTC(),
			VerificationCode: s.newCode(),
		}

		cert, created, err := s.certRepo.CreateIfAbsent(ctx, candidate)
		if repositories.IsUniqueViolation(err, repositories.CertificatesVerificationCodeKey) {
			utils.Logger.WithField("attempt", attempt).Warn("Verification code collision; regenerating")
			lastErr = err
			continue
		}
		if err != nil {
			return nil, false, utils.NewInternalError("Could not issue certificate", err)
		}

		if created {
			s.afterIssue(ctx, user, cert)
		}
		return cert, created, nil
	}

	return nil, false, utils.NewInternalError(
		"Could not issue certificate",
		fmt.Errorf("verification code collided %d times: %w", constants.VerificationCodeMaxAttempts, lastErr),
	)
}

func (s *CertificateService) afterIssue(ctx context.Context, user *models.User, cert *models.Certificate) {
	s.metrics.CertificatesIssued.Inc()
	utils.Logger.WithFields(logrus.Fields{
		"certificate_id": cert.ID,
		"user_id":        user.ID,
		"course_id":      cert.CourseID,
	}).Info("Certificate issued")

	s.notifications.notifyBestEffort(ctx, NewNotification{
		UserID:      user.ID,
		Title:       "Certificate earned",
		Description: fmt.Sprintf("You earned a certificate for %s.", cert.CourseName),
		Type:        models.NotificationTypeCertificate,
		Link:        utils.Ptr("/certificates/" + cert.ID.String()),
		Metadata: models.CertificateMetadata{
			CertificateID:    cert.ID,
			CourseID:         cert.CourseID,
			VerificationCode: cert.VerificationCode,
		},
	})

	if err := s.mailer.SendCertificateIssued(ctx, user, cert); err != nil {
		utils.Logger.WithError(err).WithField("certificate_id", cert.ID).Error("Failed to send certificate email")
	}
}

// GetForUser returns the certificate only when userID owns it.
func (s *CertificateService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load certificate", err)
	}
	if cert == nil || cert.UserID != userID {
		return nil, utils.NewNotFoundError("Certificate not found")
	}
	return cert, nil
}

func (s *CertificateService) List(ctx context.Context, userID uuid.UUID) ([]*models.Certificate, error) {
	list, err := s.certRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not list certificates", err)
	}
	return list, nil
}

// Verify is the public lookup behind the verification page.
func (s *CertificateService) Verify(ctx context.Context, code string) (*models.Certificate, error) {
	code = utils.NormalizeVerificationCode(code)
	if code == "" {
		return nil, utils.NewNotFoundError("Certificate not found")
	}
	cert, err := s.certRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, utils.NewInternalError("Could not verify certificate", err)
	}
	if cert == nil {
		return nil, utils.NewNotFoundError("Certificate not found")
	}
	return cert, nil
}
