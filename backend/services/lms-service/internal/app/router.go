package app

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/controllers"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/routes"
	"github.com/doctrina/mono-repo/backend/shared/go-middleware"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter registers every route. More specific paths are registered
// before their {id} siblings.
func NewRouter(
	cfg *config.Config,
	svcs *Services,
	db controllers.Pinger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *mux.Router {
	healthController := controllers.NewHealthController(db)
	stripeWebhookController := controllers.NewStripeWebhookController(svcs.Webhooks)
	userController := controllers.NewUserController(svcs.Identity)
	notificationController := controllers.NewNotificationController(svcs.Notifications)
	favoriteController := controllers.NewFavoriteController(svcs.Favorites)
	certificateController := controllers.NewCertificateController(svcs.Certificates)
	purchaseController := controllers.NewPurchaseController(svcs.Purchases)

	router := mux.NewRouter()
	router.Use(m.Middleware)

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc(routes.LMSStripeWebhook, stripeWebhookController.WebhookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.LMSCertificateVerify, certificateController.VerifyHandler).Methods(http.MethodGet)

	// Identity only: the local user may not exist yet
	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.AuthMiddleware(cfg.AuthPublicKey, cfg.AuthIssuer))
	authed.HandleFunc(routes.LMSUsersMe, userController.EnsureMeHandler).Methods(http.MethodPost)
	authed.HandleFunc(routes.LMSUsersMe, userController.GetMeHandler).Methods(http.MethodGet)

	// Identity resolved to a local user
	secured := router.NewRoute().Subrouter()
	secured.Use(
		middleware.AuthMiddleware(cfg.AuthPublicKey, cfg.AuthIssuer),
		middleware.CurrentUserMiddleware(svcs.Identity),
	)
	secured.HandleFunc(routes.LMSNotificationsUnreadCount, notificationController.UnreadCountHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSNotificationsReadAll, notificationController.MarkAllReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LMSNotificationRead, notificationController.MarkReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LMSNotifications, notificationController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSNotification, notificationController.DeleteHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.LMSFavorites, favoriteController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSFavorite, favoriteController.StatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSFavorite, favoriteController.AddHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.LMSFavorite, favoriteController.RemoveHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.LMSCertificates, certificateController.IssueHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LMSCertificates, certificateController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSCertificate, certificateController.GetHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.LMSCheckout, purchaseController.CheckoutHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LMSPurchases, purchaseController.ListPurchasesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSEnrollments, purchaseController.ListEnrollmentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LMSCoursePrice, purchaseController.GetCoursePriceHandler).Methods(http.MethodGet)

	instructor := secured.NewRoute().Subrouter()
	instructor.Use(middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))
	instructor.HandleFunc(routes.LMSInstructorSales, purchaseController.CourseSalesHandler).Methods(http.MethodGet)
	instructor.HandleFunc(routes.LMSInstructorPrice, purchaseController.SetCoursePriceHandler).Methods(http.MethodPut)

	admin := secured.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc(routes.LMSNotifications, notificationController.CreateHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.LMSUserRole, userController.SetRoleHandler).Methods(http.MethodPut)

	return router
}

// WithCORS wraps the router the way the web frontend expects.
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	})
	return co.Handler(h)
}
