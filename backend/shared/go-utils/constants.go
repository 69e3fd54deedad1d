package utils

const (
	OrganizationName                      = "Doctrina"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// Prefix of every certificate verification code.
	VerificationCodePrefix = "DOC"
)
