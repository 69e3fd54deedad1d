package routes

const (
	Health  = "/health"
	Metrics = "/metrics"

	LMSStripeWebhook = "/api/v1/lms/stripe/webhook"

	LMSUsersMe  = "/api/v1/lms/users/me"
	LMSUserRole = "/api/v1/lms/users/{id}/role"

	LMSNotifications            = "/api/v1/lms/notifications"
	LMSNotificationsUnreadCount = "/api/v1/lms/notifications/unread-count"
	LMSNotificationsReadAll     = "/api/v1/lms/notifications/read-all"
	LMSNotificationRead         = "/api/v1/lms/notifications/{id}/read"
	LMSNotification             = "/api/v1/lms/notifications/{id}"

	LMSFavorites = "/api/v1/lms/favorites"
	LMSFavorite  = "/api/v1/lms/favorites/{resourceId}"

	LMSCertificates      = "/api/v1/lms/certificates"
	LMSCertificateVerify = "/api/v1/lms/certificates/verify/{code}"
	LMSCertificate       = "/api/v1/lms/certificates/{id}"

	LMSCheckout        = "/api/v1/lms/checkout"
	LMSPurchases       = "/api/v1/lms/purchases"
	LMSEnrollments     = "/api/v1/lms/enrollments"
	LMSInstructorSales = "/api/v1/lms/instructor/courses/{courseId}/sales"
	LMSCoursePrice     = "/api/v1/lms/courses/{courseId}/price"
	LMSInstructorPrice = "/api/v1/lms/instructor/courses/{courseId}/price"
)
