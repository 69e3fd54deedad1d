package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"log"
	"os"
	"testing"

	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestHelper encapsulates everything the integration suites need to talk to
// a running service and its database.
type TestHelper struct {
	T                   *testing.T
	Ctx                 context.Context
	BaseURL             string
	DB                  *pgxpool.Pool
	PrivateKey          *rsa.PrivateKey
	Issuer              string
	StripeWebhookSecret string

	AppName string

	// Repositories
	UserRepo         repositories.UserRepository
	PurchaseRepo     repositories.PurchaseRepository
	EnrollmentRepo   repositories.EnrollmentRepository
	CertificateRepo  repositories.CertificateRepository
	FavoriteRepo     repositories.FavoriteRepository
	NotificationRepo repositories.NotificationRepository
	StripeEventRepo  repositories.StripeEventRepository
}

// NewTestHelper loads the test environment, connects to the DB and
// initializes repositories. It's designed to be called once from TestMain.
//
// Required env: APP_URL_FROM_ANYWHERE, DB_URL, STRIPE_WEBHOOK_SECRET,
// AUTH_PRIVATE_KEY_BASE64 (PEM, the pair of the service's public key) and
// AUTH_ISSUER.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL env var is missing")
	}
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		log.Fatal("AUTH_ISSUER env var is missing")
	}

	privateKeyB64 := os.Getenv("AUTH_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privateKeyB64, "AUTH_PRIVATE_KEY_BASE64 not set")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:                   t,
		Ctx:                 ctx,
		BaseURL:             baseURL,
		DB:                  dbPool,
		PrivateKey:          privateKey,
		Issuer:              issuer,
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AppName:             appName,
		UserRepo:            repositories.NewUserRepository(dbPool),
		PurchaseRepo:        repositories.NewPurchaseRepository(dbPool),
		EnrollmentRepo:      repositories.NewEnrollmentRepository(dbPool),
		CertificateRepo:     repositories.NewCertificateRepository(dbPool),
		FavoriteRepo:        repositories.NewFavoriteRepository(dbPool),
		NotificationRepo:    repositories.NewNotificationRepository(dbPool),
		StripeEventRepo:     repositories.NewStripeEventRepository(dbPool),
	}
}
