package constants

import "time"

// Checkout session metadata keys. The frontend and the Stripe dashboard use
// the same camelCase names.
const (
	StripeMetadataCourseIDKey = "courseId"
	StripeMetadataUserIDKey   = "userId"
)

const (
	// Stripe keeps an unpaid checkout session open for 24 hours.
	CheckoutSessionLifetime = 24 * time.Hour
	CheckoutCurrency        = "usd"
)

// Certificates
const (
	VerificationCodeGroups       = 3
	VerificationCodeGroupLength  = 4
	VerificationCodeMaxAttempts  = 3
	DefaultCertificateTemplateID = "classic"
)

// Email
const (
	EmailSubjectPurchaseReceipt   = "Your Doctrina receipt: %s"
	EmailSubjectCertificateIssued = "Your certificate for %s"
	SupportTeamName               = "Doctrina"
)

// Job scheduling and timeouts
const (
	PurchaseExpiryCronSpec      = "*/15 * * * *" // every 15 minutes
	NotificationPurgeCronSpec   = "30 3 * * *"   // 03:30 UTC daily
	PurchaseExpiryJobTimeout    = 2 * time.Minute
	NotificationPurgeJobTimeout = 5 * time.Minute
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)
