package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrMissingMetadata  = errors.New("missing_metadata")
	ErrMalformedEvent   = errors.New("malformed_event")

	// ErrRefundNotImplemented marks charge.refunded as a known gap. It is
	// logged, never returned to Stripe.
	ErrRefundNotImplemented = errors.New("refund handling not implemented")
)

// StepError names the step of event handling that failed. Step is safe to
// show to the caller; Err may carry database detail and is only logged.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

func stepFailed(step string, err error) error {
	return &StepError{Step: step, Err: err}
}

type StripeWebhookService struct {
	webhookSecret   string
	userRepo        repositories.UserRepository
	purchaseRepo    repositories.PurchaseRepository
	stripeEventRepo repositories.StripeEventRepository
	purchases       *PurchaseService
	notifications   *NotificationService
	mailer          Mailer
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewStripeWebhookService(
	webhookSecret string,
	userRepo repositories.UserRepository,
	purchaseRepo repositories.PurchaseRepository,
	stripeEventRepo repositories.StripeEventRepository,
	purchases *PurchaseService,
	notifications *NotificationService,
	mailer Mailer,
	m *metrics.Metrics,
) *StripeWebhookService {
	return &StripeWebhookService{
		webhookSecret:   webhookSecret,
		userRepo:        userRepo,
		purchaseRepo:    purchaseRepo,
		stripeEventRepo: stripeEventRepo,
		purchases:       purchases,
		notifications:   notifications,
		mailer:          mailer,
		metrics:         m,
		now:             time.Now,
	}
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
func (s *StripeWebhookService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader == "" {
		return stripe.Event{}, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

/*
Process dispatches a verified event and returns its outcome label.

An event id already present in stripe_events is acknowledged without being
dispatched again. The id is recorded only after the handler succeeds, so a
failed event is retried in full on Stripe's next delivery.
*/
func (s *StripeWebhookService) Process(ctx context.Context, event stripe.Event) (string, error) {
	log := utils.Logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	seen, err := s.stripeEventRepo.Exists(ctx, event.ID)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues(string(event.Type), metrics.OutcomeFailed).Inc()
		return metrics.OutcomeFailed, stepFailed("check stripe event", err)
	}
	if seen {
		log.Info("Stripe event already processed; acknowledging")
		s.metrics.WebhookEvents.WithLabelValues(string(event.Type), metrics.OutcomeDuplicate).Inc()
		return metrics.OutcomeDuplicate, nil
	}

	parsed, err := ParseWebhookEvent(event)
	if err != nil {
		log.WithError(err).Warn("Could not parse stripe event")
		s.metrics.WebhookEvents.WithLabelValues(string(event.Type), metrics.OutcomeRejected).Inc()
		return metrics.OutcomeRejected, err
	}

	outcome, err := s.dispatch(ctx, parsed)
	if err != nil {
		label := metrics.OutcomeFailed
		if errors.Is(err, ErrMissingMetadata) {
			label = metrics.OutcomeRejected
		}
		log.WithError(err).Error("Stripe event handling failed")
		s.metrics.WebhookEvents.WithLabelValues(string(event.Type), label).Inc()
		return label, err
	}

	if err := s.stripeEventRepo.Record(ctx, &models.StripeEvent{
		EventID:    event.ID,
		EventType:  string(event.Type),
		ReceivedAt: s.now().UTC(),
	}); err != nil {
		s.metrics.WebhookEvents.WithLabelValues(string(event.Type), metrics.OutcomeFailed).Inc()
		return metrics.OutcomeFailed, stepFailed("record stripe event", err)
	}

	s.metrics.WebhookEvents.WithLabelValues(string(event.Type), outcome).Inc()
	return outcome, nil
}

func (s *StripeWebhookService) dispatch(ctx context.Context, event WebhookEvent) (string, error) {
	switch e := event.(type) {
	case CheckoutSessionCompletedEvent:
		return s.handleCheckoutCompleted(ctx, e)
	case CheckoutSessionExpiredEvent:
		if err := s.purchases.expireSession(ctx, e.Session.ID); err != nil {
			return "", stepFailed("expire purchase", err)
		}
		return metrics.OutcomeProcessed, nil
	case ChargeRefundedEvent:
		utils.Logger.WithError(ErrRefundNotImplemented).WithFields(logrus.Fields{
			"event_id":  e.ID,
			"charge_id": e.Charge.ID,
			"refunded":  e.Charge.AmountRefunded,
		}).Warn("Charge refunded; purchase left unchanged")
		return metrics.OutcomeIgnored, nil
	default:
		utils.Logger.WithFields(logrus.Fields{
			"event_id":   event.EventID(),
			"event_type": event.EventType(),
		}).Info("Unhandled stripe event type")
		return metrics.OutcomeIgnored, nil
	}
}

func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, e CheckoutSessionCompletedEvent) (string, error) {
	sess := e.Session
	rawUserID := sess.Metadata[constants.StripeMetadataUserIDKey]
	rawCourseID := sess.Metadata[constants.StripeMetadataCourseIDKey]
	log := utils.Logger.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"session_id": sess.ID,
		"user_id":    rawUserID,
		"course_id":  rawCourseID,
	})

	if sess.ID == "" {
		return "", fmt.Errorf("%w: checkout session has no id", ErrMissingMetadata)
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q", ErrMissingMetadata, constants.StripeMetadataUserIDKey, rawUserID)
	}
	courseID, err := uuid.Parse(rawCourseID)
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q", ErrMissingMetadata, constants.StripeMetadataCourseIDKey, rawCourseID)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", stepFailed("load user", err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: unknown user %s", ErrMissingMetadata, userID)
	}

	result, err := s.purchaseRepo.CompleteCheckout(ctx, &models.Purchase{
		ID:              uuid.New(),
		UserID:          userID,
		CourseID:        courseID,
		AmountCents:     sess.AmountTotal,
		StripeSessionID: sess.ID,
	})
	if errors.Is(err, utils.ErrInvalidStatusTransition) {
		log.WithField("status", result.Purchase.Status).
			Warn("Checkout completed for a purchase that can no longer complete; acknowledging")
		return metrics.OutcomeIgnored, nil
	}
	if err != nil {
		return "", stepFailed("complete checkout", err)
	}

	if !result.EnrollmentCreated {
		log.Info("Checkout already fulfilled")
		return metrics.OutcomeDuplicate, nil
	}

	s.metrics.PurchasesCompleted.Inc()
	log.WithFields(logrus.Fields{
		"purchase_id":   result.Purchase.ID,
		"enrollment_id": result.Enrollment.ID,
		"amount":        result.Purchase.Amount(),
	}).Info("Purchase completed and enrollment created")

	s.notifications.notifyBestEffort(ctx, NewNotification{
		UserID:      userID,
		Title:       "Purchase complete",
		Description: fmt.Sprintf("Your payment of $%.2f went through. You are now enrolled.", result.Purchase.Amount()),
		Type:        models.NotificationTypePurchase,
		Link:        utils.Ptr("/courses/" + courseID.String()),
		Metadata: models.PurchaseMetadata{
			PurchaseID:  result.Purchase.ID,
			CourseID:    courseID,
			AmountCents: result.Purchase.AmountCents,
		},
	})
	if err := s.mailer.SendPurchaseReceipt(ctx, user, result.Purchase); err != nil {
		log.WithError(err).Error("Failed to send purchase receipt")
	}
	return metrics.OutcomeProcessed, nil
}
