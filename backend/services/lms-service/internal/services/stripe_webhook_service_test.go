package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-testhelpers"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func deliver(t *testing.T, env *testEnv, payload []byte) (string, error) {
	t.Helper()
	sig := testhelpers.SignStripePayload(testWebhookSecret, payload, time.Now())
	event, err := env.webhooks.VerifyEvent(payload, sig)
	require.NoError(t, err)
	return env.webhooks.Process(context.Background(), event)
}

func completedEvent(t *testing.T, eventID, sessionID string, userID, courseID uuid.UUID, amount int64) []byte {
	t.Helper()
	return testhelpers.MockStripeEvent(t, eventID, string(stripe.EventTypeCheckoutSessionCompleted),
		testhelpers.CheckoutSessionObject(sessionID, userID.String(), courseID.String(), amount))
}

func TestWebhook_CheckoutCompletedHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := uuid.New()
	payload := completedEvent(t, "evt_happy", "cs_happy", user.ID, courseID, 4999)

	outcome, err := deliver(t, env, payload)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, outcome)

	assert.Equal(t, 1, env.store.PurchaseCount())
	assert.Equal(t, 1, env.store.EnrollmentCount())

	p, err := env.store.Purchases().GetBySessionID(ctx, "cs_happy")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.PurchaseStatusComplete, p.Status)
	assert.Equal(t, int64(4999), p.AmountCents)
	assert.InDelta(t, 49.99, p.Amount(), 0.0001)

	e, err := env.store.Enrollments().GetByPurchaseID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, user.ID, e.UserID)
	assert.Equal(t, courseID, e.CourseID)

	assert.Equal(t, 1, env.store.NotificationCount(user.ID))
	assert.Len(t, env.mailer.receipts, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.PurchasesCompleted))

	seen, err := env.store.StripeEvents().Exists(ctx, "evt_happy")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestWebhook_RedeliveryCreatesNothingNew(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "buyer")
	courseID := uuid.New()
	payload := completedEvent(t, "evt_redeliver", "cs_redeliver", user.ID, courseID, 4999)

	_, err := deliver(t, env, payload)
	require.NoError(t, err)

	outcome, err := deliver(t, env, payload)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeDuplicate, outcome)

	// A different event for the same session is absorbed by the session key.
	other := completedEvent(t, "evt_redeliver_2", "cs_redeliver", user.ID, courseID, 4999)
	outcome, err = deliver(t, env, other)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeDuplicate, outcome)

	assert.Equal(t, 1, env.store.PurchaseCount())
	assert.Equal(t, 1, env.store.EnrollmentCount())
	assert.Equal(t, 1, env.store.NotificationCount(user.ID))
	assert.Len(t, env.mailer.receipts, 1)
	assert.Equal(t, float64(2), testutil.ToFloat64(
		env.metrics.WebhookEvents.WithLabelValues("checkout.session.completed", metrics.OutcomeDuplicate)))
}

func TestWebhook_CompletesOpenPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := env.listCourse("Intro to Go", 4999)

	checkout, err := env.purchases.CreateCheckout(ctx, user, dtos.CreateCheckoutRequest{CourseID: courseID})
	require.NoError(t, err)

	_, err = deliver(t, env, completedEvent(t, "", checkout.SessionID, user.ID, courseID, 4999))
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.PurchaseCount())
	assert.Equal(t, 1, env.store.EnrollmentCount())
	p, err := env.store.Purchases().GetBySessionID(ctx, checkout.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusComplete, p.Status)
}

func TestWebhook_TamperedSignatureRejected(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "buyer")
	payload := completedEvent(t, "evt_tampered", "cs_tampered", user.ID, uuid.New(), 4999)
	sig := testhelpers.SignStripePayload(testWebhookSecret, payload, time.Now())

	tampered := bytes.Replace(payload, []byte("4999"), []byte("1"), 1)
	_, err := env.webhooks.VerifyEvent(tampered, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = env.webhooks.VerifyEvent(payload, testhelpers.SignStripePayload("whsec_wrong", payload, time.Now()))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = env.webhooks.VerifyEvent(payload, "")
	require.ErrorIs(t, err, ErrInvalidSignature)

	assert.Equal(t, 0, env.store.PurchaseCount())
	assert.Equal(t, 0, env.store.EnrollmentCount())
}

func TestWebhook_MissingMetadata(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")

	cases := map[string]map[string]any{
		"no course":    testhelpers.CheckoutSessionObject("cs_nocourse", user.ID.String(), "", 4999),
		"no user":      testhelpers.CheckoutSessionObject("cs_nouser", "", uuid.NewString(), 4999),
		"bad user id":  testhelpers.CheckoutSessionObject("cs_baduser", "not-a-uuid", uuid.NewString(), 4999),
		"unknown user": testhelpers.CheckoutSessionObject("cs_ghost", uuid.NewString(), uuid.NewString(), 4999),
	}
	for name, object := range cases {
		t.Run(name, func(t *testing.T) {
			eventID := "evt_" + uuid.NewString()
			payload := testhelpers.MockStripeEvent(t, eventID, string(stripe.EventTypeCheckoutSessionCompleted), object)

			outcome, err := deliver(t, env, payload)
			require.ErrorIs(t, err, ErrMissingMetadata)
			assert.Equal(t, metrics.OutcomeRejected, outcome)

			seen, err := env.store.StripeEvents().Exists(ctx, eventID)
			require.NoError(t, err)
			assert.False(t, seen)
		})
	}
	assert.Equal(t, 0, env.store.PurchaseCount())
	assert.Equal(t, 0, env.store.EnrollmentCount())
}

func TestWebhook_DownstreamFailureIsRetried(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	payload := completedEvent(t, "evt_retry", "cs_retry", user.ID, uuid.New(), 2500)

	env.store.FailCompleteCheckout = errors.New("connection reset")
	outcome, err := deliver(t, env, payload)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingMetadata)
	assert.Equal(t, metrics.OutcomeFailed, outcome)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "complete checkout", stepErr.Step)

	seen, err := env.store.StripeEvents().Exists(ctx, "evt_retry")
	require.NoError(t, err)
	assert.False(t, seen, "a failed event must not be recorded")

	env.store.FailCompleteCheckout = nil
	outcome, err = deliver(t, env, payload)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, outcome)
	assert.Equal(t, 1, env.store.EnrollmentCount())
}

func TestWebhook_SessionExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := env.listCourse("Intro to Go", 4999)

	checkout, err := env.purchases.CreateCheckout(ctx, user, dtos.CreateCheckoutRequest{CourseID: courseID})
	require.NoError(t, err)

	expired := testhelpers.MockStripeEvent(t, "", string(stripe.EventTypeCheckoutSessionExpired),
		testhelpers.CheckoutSessionObject(checkout.SessionID, user.ID.String(), courseID.String(), 4999))
	outcome, err := deliver(t, env, expired)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, outcome)

	p, err := env.store.Purchases().GetBySessionID(ctx, checkout.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusExpired, p.Status)

	// A late completion for an expired purchase is acknowledged but grants nothing.
	outcome, err = deliver(t, env, completedEvent(t, "", checkout.SessionID, user.ID, courseID, 4999))
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeIgnored, outcome)
	assert.Equal(t, 0, env.store.EnrollmentCount())

	// Unknown sessions are a no-op.
	unknown := testhelpers.MockStripeEvent(t, "", string(stripe.EventTypeCheckoutSessionExpired),
		testhelpers.CheckoutSessionObject("cs_unknown", "", "", 0))
	_, err = deliver(t, env, unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.PurchaseCount())
}

// openStalePurchase opens a checkout and backdates it past the session
// lifetime.
func openStalePurchase(t *testing.T, env *testEnv, user *models.User, courseID uuid.UUID) *models.Purchase {
	t.Helper()
	ctx := context.Background()
	checkout, err := env.purchases.CreateCheckout(ctx, user, dtos.CreateCheckoutRequest{CourseID: courseID})
	require.NoError(t, err)
	p, err := env.store.Purchases().GetBySessionID(ctx, checkout.SessionID)
	require.NoError(t, err)
	env.store.SetPurchaseCreatedAt(p.ID, time.Now().Add(-25*time.Hour))
	return p
}

func TestWebhook_CompletionAfterLocalExpiryEnrolls(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := env.listCourse("Intro to Go", 4999)
	p := openStalePurchase(t, env, user, courseID)

	n, err := env.maintenance.ExpireStalePurchases(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// Stripe retries a completion that failed while the purchase was open.
	outcome, err := deliver(t, env, completedEvent(t, "evt_late", p.StripeSessionID, user.ID, courseID, 4999))
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, outcome)

	stored, err := env.store.Purchases().GetBySessionID(ctx, p.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusComplete, stored.Status)
	assert.False(t, stored.ExpiredLocally)
	assert.Equal(t, 1, env.store.EnrollmentCount())
	assert.Len(t, env.mailer.receipts, 1)

	n, err = env.maintenance.ExpireStalePurchases(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWebhook_LocalExpiryAfterCompletionIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := env.listCourse("Intro to Go", 4999)
	p := openStalePurchase(t, env, user, courseID)

	outcome, err := deliver(t, env, completedEvent(t, "evt_on_time", p.StripeSessionID, user.ID, courseID, 4999))
	require.NoError(t, err)
	require.Equal(t, metrics.OutcomeProcessed, outcome)

	n, err := env.maintenance.ExpireStalePurchases(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	stored, err := env.store.Purchases().GetBySessionID(ctx, p.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusComplete, stored.Status)
	assert.Equal(t, 1, env.store.EnrollmentCount())
}

func TestWebhook_StripeExpiryConfirmsLocalExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "buyer")
	courseID := env.listCourse("Intro to Go", 4999)
	p := openStalePurchase(t, env, user, courseID)

	_, err := env.maintenance.ExpireStalePurchases(ctx)
	require.NoError(t, err)

	expired := testhelpers.MockStripeEvent(t, "", string(stripe.EventTypeCheckoutSessionExpired),
		testhelpers.CheckoutSessionObject(p.StripeSessionID, user.ID.String(), courseID.String(), 4999))
	outcome, err := deliver(t, env, expired)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, outcome)

	stored, err := env.store.Purchases().GetBySessionID(ctx, p.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusExpired, stored.Status)
	assert.False(t, stored.ExpiredLocally)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.PurchasesExpired))

	outcome, err = deliver(t, env, completedEvent(t, "", p.StripeSessionID, user.ID, courseID, 4999))
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeIgnored, outcome)
	assert.Equal(t, 0, env.store.EnrollmentCount())
}

func TestWebhook_RefundAndUnknownEventsAcknowledged(t *testing.T) {
	env := newTestEnv(t)

	refund := testhelpers.MockStripeEvent(t, "", string(stripe.EventTypeChargeRefunded), map[string]any{
		"id":              "ch_test_1",
		"object":          "charge",
		"amount_refunded": 4999,
	})
	outcome, err := deliver(t, env, refund)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeIgnored, outcome)

	other := testhelpers.MockStripeEvent(t, "", "customer.created", map[string]any{
		"id":     "cus_test_1",
		"object": "customer",
	})
	outcome, err = deliver(t, env, other)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeIgnored, outcome)
}

func TestParseWebhookEvent(t *testing.T) {
	completed, err := ParseWebhookEvent(stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: []byte(`{"id":"cs_1","amount_total":4999,"metadata":{"courseId":"c","userId":"u"}}`)},
	})
	require.NoError(t, err)
	sess, ok := completed.(CheckoutSessionCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "evt_1", sess.EventID())
	assert.Equal(t, "cs_1", sess.Session.ID)
	assert.Equal(t, int64(4999), sess.Session.AmountTotal)
	assert.Equal(t, "c", sess.Session.Metadata["courseId"])

	unknown, err := ParseWebhookEvent(stripe.Event{ID: "evt_2", Type: "invoice.paid"})
	require.NoError(t, err)
	assert.IsType(t, UnknownEvent{}, unknown)
	assert.Equal(t, "invoice.paid", unknown.EventType())

	_, err = ParseWebhookEvent(stripe.Event{ID: "evt_3", Type: stripe.EventTypeCheckoutSessionCompleted})
	require.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseWebhookEvent(stripe.Event{
		ID:   "evt_4",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: []byte(`{"id":`)},
	})
	require.ErrorIs(t, err, ErrMalformedEvent)
}
