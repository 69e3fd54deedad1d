package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-testhelpers"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testWebhookSecret = "whsec_test_secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMailer struct {
	mu           sync.Mutex
	receipts     []*models.Purchase
	certificates []*models.Certificate
	err          error
}

func (f *fakeMailer) SendPurchaseReceipt(_ context.Context, _ *models.User, p *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, p)
	return f.err
}

func (f *fakeMailer) SendCertificateIssued(_ context.Context, _ *models.User, c *models.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.certificates = append(f.certificates, c)
	return f.err
}

type fakeCheckout struct {
	calls []CheckoutSessionInput
	err   error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, in)
	id := "cs_test_" + utils.RandomString(12)
	return &CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

// testEnv wires every service on top of one MemoryStore.
type testEnv struct {
	store         *testhelpers.MemoryStore
	metrics       *metrics.Metrics
	mailer        *fakeMailer
	checkout      *fakeCheckout
	identity      *IdentityService
	notifications *NotificationService
	favorites     *FavoriteService
	certificates  *CertificateService
	purchases     *PurchaseService
	webhooks      *StripeWebhookService
	maintenance   *MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		StripeWebhookSecret:   testWebhookSecret,
		CheckoutSuccessURL:    "https://app.doctrina.test/checkout/success",
		CheckoutCancelURL:     "https://app.doctrina.test/checkout/cancel",
		NotificationRetention: config.DefaultNotificationRetentionDays * 24 * time.Hour,
	}

	env := &testEnv{
		store:    testhelpers.NewMemoryStore(),
		metrics:  metrics.New(prometheus.NewRegistry()),
		mailer:   &fakeMailer{},
		checkout: &fakeCheckout{},
	}
	s := env.store
	env.identity = NewIdentityService(s.Users())
	env.notifications = NewNotificationService(s.Notifications(), env.metrics)
	env.favorites = NewFavoriteService(s.Favorites())
	env.certificates = NewCertificateService(s.Certificates(), s.Enrollments(), env.notifications, env.mailer, env.metrics)
	env.purchases = NewPurchaseService(cfg, s.Purchases(), s.Enrollments(), s.CoursePrices(), env.checkout, env.metrics)
	env.webhooks = NewStripeWebhookService(
		cfg.StripeWebhookSecret,
		s.Users(), s.Purchases(), s.StripeEvents(),
		env.purchases, env.notifications, env.mailer, env.metrics,
	)
	env.maintenance = NewMaintenanceService(env.purchases, env.notifications, cfg.NotificationRetention)
	return env
}

func (e *testEnv) newUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := e.identity.EnsureUser(context.Background(), &models.ExternalIdentity{
		Subject: "sub_" + uuid.NewString(),
		Email:   name + "-" + utils.RandomString(6) + "@example.com",
		Name:    name,
	})
	require.NoError(t, err)
	return user
}

// listCourse prices a fresh course so checkout can sell it.
func (e *testEnv) listCourse(name string, amountCents int64) uuid.UUID {
	courseID := uuid.New()
	e.store.SetCoursePrice(courseID, uuid.New(), name, amountCents)
	return courseID
}
