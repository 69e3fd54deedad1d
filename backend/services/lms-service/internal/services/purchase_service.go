package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
)

var errPurchaseNotOpen = errors.New("purchase is not open")

// CheckoutSession is the part of a Stripe checkout session we keep.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutSessionInput describes the single line item of a course purchase.
type CheckoutSessionInput struct {
	UserID        uuid.UUID
	CustomerEmail string
	CourseID      uuid.UUID
	CourseName    string
	AmountCents   int64
	SuccessURL    string
	CancelURL     string
}

// CheckoutSessionCreator opens hosted checkout sessions.
type CheckoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
}

// StripeCheckout creates sessions through an injected *stripe.Client.
type StripeCheckout struct {
	client *stripe.Client
}

func NewStripeCheckout(client *stripe.Client) *StripeCheckout {
	return &StripeCheckout{client: client}
}

func (c *StripeCheckout) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.UserID.String()),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(constants.CheckoutCurrency),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(in.CourseName),
					},
				},
			},
		},
		Metadata: map[string]string{
			constants.StripeMetadataCourseIDKey: in.CourseID.String(),
			constants.StripeMetadataUserIDKey:   in.UserID.String(),
		},
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}

	sess, err := c.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

type PurchaseService struct {
	cfg            *config.Config
	purchaseRepo   repositories.PurchaseRepository
	enrollmentRepo repositories.EnrollmentRepository
	priceRepo      repositories.CoursePriceRepository
	checkout       CheckoutSessionCreator
	metrics        *metrics.Metrics
}

func NewPurchaseService(
	cfg *config.Config,
	purchaseRepo repositories.PurchaseRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	priceRepo repositories.CoursePriceRepository,
	checkout CheckoutSessionCreator,
	m *metrics.Metrics,
) *PurchaseService {
	return &PurchaseService{
		cfg:            cfg,
		purchaseRepo:   purchaseRepo,
		enrollmentRepo: enrollmentRepo,
		priceRepo:      priceRepo,
		checkout:       checkout,
		metrics:        m,
	}
}

/*
CreateCheckout opens a Stripe checkout session for the course at its stored
price and records an open Purchase keyed by the session id. The webhook
completes it later. Courses without a price are 404; users already enrolled
in the course are refused with 409.
*/
func (s *PurchaseService) CreateCheckout(ctx context.Context, user *models.User, req dtos.CreateCheckoutRequest) (*dtos.CreateCheckoutResponse, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, user.ID, req.CourseID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load enrollment", err)
	}
	if enrollment != nil {
		return nil, conflictError("You are already enrolled in this course")
	}

	price, err := s.priceRepo.Get(ctx, req.CourseID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load course price", err)
	}
	if price == nil {
		return nil, utils.NewNotFoundError("Course is not for sale")
	}

	sess, err := s.checkout.CreateCheckoutSession(ctx, CheckoutSessionInput{
		UserID:        user.ID,
		CustomerEmail: user.Email,
		CourseID:      req.CourseID,
		CourseName:    price.CourseName,
		AmountCents:   price.AmountCents,
		SuccessURL:    s.cfg.CheckoutSuccessURL,
		CancelURL:     s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return nil, utils.NewInternalError("Could not create checkout session",
			fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err))
	}

	purchase := &models.Purchase{
		ID:              uuid.New(),
		UserID:          user.ID,
		CourseID:        req.CourseID,
		AmountCents:     price.AmountCents,
		StripeSessionID: sess.ID,
	}
	if err := s.purchaseRepo.CreateOpen(ctx, purchase); err != nil {
		return nil, utils.NewInternalError("Could not record purchase", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"course_id":  req.CourseID,
		"session_id": sess.ID,
		"amount":     price.Amount(),
	}).Info("Checkout session created")

	return &dtos.CreateCheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (s *PurchaseService) GetCoursePrice(ctx context.Context, courseID uuid.UUID) (*models.CoursePrice, error) {
	price, err := s.priceRepo.Get(ctx, courseID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load course price", err)
	}
	if price == nil {
		return nil, utils.NewNotFoundError("Course is not for sale")
	}
	return price, nil
}

// SetCoursePrice lists or reprices a course. The first instructor to price a
// course owns it; afterwards only they or an admin may change it.
func (s *PurchaseService) SetCoursePrice(ctx context.Context, actor *models.User, courseID uuid.UUID, req dtos.SetCoursePriceRequest) (*models.CoursePrice, error) {
	existing, err := s.priceRepo.Get(ctx, courseID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load course price", err)
	}
	owner := actor.ID
	if existing != nil {
		if !existing.CanBeEditedBy(actor) {
			return nil, forbiddenError("Only the course instructor can change its price")
		}
		owner = existing.InstructorID
	}

	price, err := s.priceRepo.Upsert(ctx, &models.CoursePrice{
		CourseID:     courseID,
		CourseName:   req.CourseName,
		AmountCents:  req.AmountCents,
		InstructorID: owner,
		UpdatedBy:    actor.ID,
	})
	if err != nil {
		return nil, utils.NewInternalError("Could not save course price", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"course_id":  courseID,
		"updated_by": actor.ID,
		"amount":     price.Amount(),
	}).Info("Course price set")
	return price, nil
}

func (s *PurchaseService) ListPurchases(ctx context.Context, userID uuid.UUID) ([]*models.Purchase, error) {
	list, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not list purchases", err)
	}
	return list, nil
}

func (s *PurchaseService) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	list, err := s.enrollmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not list enrollments", err)
	}
	return list, nil
}

func (s *PurchaseService) SalesForCourse(ctx context.Context, courseID uuid.UUID) (*models.CourseSales, error) {
	sales, err := s.purchaseRepo.SalesByCourse(ctx, courseID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load course sales", err)
	}
	return sales, nil
}

// ExpireStale expires open purchases whose checkout session can no longer
// be paid. Stripe may still deliver a completion for them, which wins.
func (s *PurchaseService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.purchaseRepo.ExpireOpenBefore(ctx, now.Add(-constants.CheckoutSessionLifetime))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.PurchasesExpired.Add(float64(n))
	}
	return n, nil
}

// expireSession handles checkout.session.expired. An unknown session is a
// no-op. A purchase the local sweep already expired is marked as confirmed
// by Stripe, after which a completion can no longer revive it.
func (s *PurchaseService) expireSession(ctx context.Context, sessionID string) error {
	p, err := s.purchaseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if p == nil {
		utils.Logger.WithField("session_id", sessionID).Info("Expired session has no purchase; ignoring")
		return nil
	}

	var confirmedOnly bool
	err = s.purchaseRepo.UpdateWithRetry(ctx, p.ID, func(stored *models.Purchase) error {
		confirmedOnly = false
		switch {
		case stored.Status == models.PurchaseStatusExpired && stored.ExpiredLocally:
			stored.ExpiredLocally = false
			confirmedOnly = true
		case stored.Status.CanTransitionTo(models.PurchaseStatusExpired):
			stored.Status = models.PurchaseStatusExpired
		default:
			return errPurchaseNotOpen
		}
		return nil
	})
	switch {
	case errors.Is(err, errPurchaseNotOpen):
		utils.Logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"status":     p.Status,
		}).Info("Purchase not open; leaving status unchanged")
		return nil
	case errors.Is(err, utils.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if !confirmedOnly {
		s.metrics.PurchasesExpired.Inc()
	}
	return nil
}
