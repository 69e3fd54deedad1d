package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicKeyB64(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func baseEnv(t *testing.T) map[string]string {
	return map[string]string{
		"APP_PORT":               "8080",
		"APP_URL_FROM_ANYWHERE":  "https://lms.doctrina.test",
		"DB_URL":                 "postgres://localhost/lms",
		"STRIPE_SECRET_KEY":      "sk_test_123",
		"STRIPE_WEBHOOK_SECRET":  "whsec_123",
		"AUTH_PUBLIC_KEY_BASE64": publicKeyB64(t),
		"AUTH_ISSUER":            "https://auth.doctrina.test",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	env := baseEnv(t)
	cfg, err := FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.NotNil(t, cfg.AuthPublicKey)
	assert.Empty(t, cfg.SendgridAPIKey)
	assert.Equal(t, DefaultSendgridFromEmail, cfg.LDFlag_SendgridFromEmail)
	assert.Equal(t, "https://lms.doctrina.test/checkout/cancel", cfg.CheckoutCancelURL)
	assert.Contains(t, cfg.CheckoutSuccessURL, "{CHECKOUT_SESSION_ID}")
	assert.Equal(t, 90*24*time.Hour, cfg.NotificationRetention)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	for _, name := range []string{
		"APP_PORT", "APP_URL_FROM_ANYWHERE", "DB_URL", "STRIPE_SECRET_KEY",
		"STRIPE_WEBHOOK_SECRET", "AUTH_PUBLIC_KEY_BASE64", "AUTH_ISSUER",
	} {
		t.Run(name, func(t *testing.T) {
			env := baseEnv(t)
			delete(env, name)
			_, err := FromEnv(func(k string) string { return env[k] })
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	env := baseEnv(t)
	env["NOTIFICATION_RETENTION_DAYS"] = "-3"
	_, err := FromEnv(func(k string) string { return env[k] })
	assert.Error(t, err)

	env = baseEnv(t)
	env["AUTH_PUBLIC_KEY_BASE64"] = base64.StdEncoding.EncodeToString([]byte("not a pem"))
	_, err = FromEnv(func(k string) string { return env[k] })
	assert.Error(t, err)

	env = baseEnv(t)
	env["NOTIFICATION_RETENTION_DAYS"] = "30"
	cfg, err := FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.NotificationRetention)
}
