package app

import (
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
)

type Repositories struct {
	Users         repositories.UserRepository
	Purchases     repositories.PurchaseRepository
	Enrollments   repositories.EnrollmentRepository
	Certificates  repositories.CertificateRepository
	Favorites     repositories.FavoriteRepository
	Notifications repositories.NotificationRepository
	StripeEvents  repositories.StripeEventRepository
	CoursePrices  repositories.CoursePriceRepository
}

func NewRepositories(db repositories.DB) Repositories {
	return Repositories{
		Users:         repositories.NewUserRepository(db),
		Purchases:     repositories.NewPurchaseRepository(db),
		Enrollments:   repositories.NewEnrollmentRepository(db),
		Certificates:  repositories.NewCertificateRepository(db),
		Favorites:     repositories.NewFavoriteRepository(db),
		Notifications: repositories.NewNotificationRepository(db),
		StripeEvents:  repositories.NewStripeEventRepository(db),
		CoursePrices:  repositories.NewCoursePriceRepository(db),
	}
}

type Services struct {
	Identity      *services.IdentityService
	Notifications *services.NotificationService
	Favorites     *services.FavoriteService
	Certificates  *services.CertificateService
	Purchases     *services.PurchaseService
	Webhooks      *services.StripeWebhookService
	Maintenance   *services.MaintenanceService
}

// NewServices builds every service from the given collaborators. External
// clients are injected so tests can swap in fakes.
func NewServices(
	cfg *config.Config,
	repos Repositories,
	checkout services.CheckoutSessionCreator,
	mailer services.Mailer,
	m *metrics.Metrics,
) *Services {
	notifications := services.NewNotificationService(repos.Notifications, m)
	purchases := services.NewPurchaseService(cfg, repos.Purchases, repos.Enrollments, repos.CoursePrices, checkout, m)

	return &Services{
		Identity:      services.NewIdentityService(repos.Users),
		Notifications: notifications,
		Favorites:     services.NewFavoriteService(repos.Favorites),
		Certificates:  services.NewCertificateService(repos.Certificates, repos.Enrollments, notifications, mailer, m),
		Purchases:     purchases,
		Webhooks: services.NewStripeWebhookService(
			cfg.StripeWebhookSecret,
			repos.Users, repos.Purchases, repos.StripeEvents,
			purchases, notifications, mailer, m,
		),
		Maintenance: services.NewMaintenanceService(purchases, notifications, cfg.NotificationRetention),
	}
}
