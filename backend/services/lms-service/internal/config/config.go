package config

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
)

type Config struct {
	OrganizationName           string
	AppName                    string
	AppPort                    string
	AppUrl                     string
	DBUrl                      string
	StripeSecretKey            string
	StripeWebhookSecret        string
	SendgridAPIKey             string
	AuthPublicKey              *rsa.PublicKey
	AuthIssuer                 string
	CheckoutSuccessURL         string
	CheckoutCancelURL          string
	NotificationRetention      time.Duration
	LDFlag_CORSHighSecurity    bool
	LDFlag_SendgridSandboxMode bool
	LDFlag_SendgridFromEmail   string
	LDFlag_SeedDbWithTestData  bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	DefaultSendgridFromEmail         = "no-reply@doctrina.dev"
	DefaultNotificationRetentionDays = 90
)

var (
	AppName             string
	LDServerContextKey  = "lms-service"
	LDServerContextKind = "service"
)

// LoadConfig reads the environment (and a .env file when present) and exits
// the process on any missing or malformed value.
func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Failed to load .env file")
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	cfg.AppName = AppName

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set; using default feature flag values")
		return cfg
	}
	if err := loadFlags(cfg, ldSDKKey); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load LaunchDarkly flags")
	}
	return cfg
}

// FromEnv builds a Config from getenv without touching flags. It is the
// testable half of LoadConfig.
func FromEnv(getenv func(string) string) (*Config, error) {
	required := func(name string) (string, error) {
		v := getenv(name)
		if v == "" {
			return "", fmt.Errorf("%s env var is missing", name)
		}
		return v, nil
	}

	cfg := &Config{
		OrganizationName:         OrganizationName,
		SendgridAPIKey:           getenv("SENDGRID_API_KEY"),
		LDFlag_SendgridFromEmail: DefaultSendgridFromEmail,
	}

	var err error
	if cfg.AppPort, err = required("APP_PORT"); err != nil {
		return nil, err
	}
	if cfg.AppUrl, err = required("APP_URL_FROM_ANYWHERE"); err != nil {
		return nil, err
	}
	if cfg.DBUrl, err = required("DB_URL"); err != nil {
		return nil, err
	}
	if cfg.StripeSecretKey, err = required("STRIPE_SECRET_KEY"); err != nil {
		return nil, err
	}
	if cfg.StripeWebhookSecret, err = required("STRIPE_WEBHOOK_SECRET"); err != nil {
		return nil, err
	}
	if cfg.AuthIssuer, err = required("AUTH_ISSUER"); err != nil {
		return nil, err
	}

	pubB64, err := required("AUTH_PUBLIC_KEY_BASE64")
	if err != nil {
		return nil, err
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return nil, fmt.Errorf("AUTH_PUBLIC_KEY_BASE64 is not valid base64: %w", err)
	}
	if cfg.AuthPublicKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPEM); err != nil {
		return nil, fmt.Errorf("failed to parse auth public key: %w", err)
	}

	cfg.CheckoutSuccessURL = getenv("CHECKOUT_SUCCESS_URL")
	if cfg.CheckoutSuccessURL == "" {
		cfg.CheckoutSuccessURL = cfg.AppUrl + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cfg.CheckoutCancelURL = getenv("CHECKOUT_CANCEL_URL")
	if cfg.CheckoutCancelURL == "" {
		cfg.CheckoutCancelURL = cfg.AppUrl + "/checkout/cancel"
	}

	days := DefaultNotificationRetentionDays
	if v := getenv("NOTIFICATION_RETENTION_DAYS"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("NOTIFICATION_RETENTION_DAYS must be a positive integer, got %q", v)
		}
	}
	cfg.NotificationRetention = time.Duration(days) * 24 * time.Hour

	return cfg, nil
}

func loadFlags(cfg *Config, sdkKey string) error {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	if cfg.LDFlag_CORSHighSecurity, err = ldClient.BoolVariation("cors_high_security", ctx, false); err != nil {
		return fmt.Errorf("cors_high_security: %w", err)
	}
	utils.Logger.Debugf("cors_high_security flag: %t", cfg.LDFlag_CORSHighSecurity)

	if cfg.LDFlag_SendgridSandboxMode, err = ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false); err != nil {
		return fmt.Errorf("sendgrid_sandbox_mode: %w", err)
	}

	from, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		return fmt.Errorf("sendgrid_from_email: %w", err)
	}
	if from != "" {
		cfg.LDFlag_SendgridFromEmail = from
	}

	if cfg.LDFlag_SeedDbWithTestData, err = ldClient.BoolVariation("seed_db_with_test_data", ctx, false); err != nil {
		return fmt.Errorf("seed_db_with_test_data: %w", err)
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", cfg.LDFlag_SeedDbWithTestData)

	return nil
}
