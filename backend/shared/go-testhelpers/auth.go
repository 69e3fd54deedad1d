package testhelpers

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// GenerateRSAKey returns a throwaway signing key for identity tokens.
func GenerateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "Failed to generate RSA key")
	return key
}

// SignIdentityToken mints an RS256 identity token the way the auth provider
// does. A negative ttl yields an already expired token.
func SignIdentityToken(t *testing.T, key *rsa.PrivateKey, issuer string, identity models.ExternalIdentity, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": issuer,
		"sub": identity.Subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}
	if identity.Name != "" {
		claims["name"] = identity.Name
	}
	if identity.Image != "" {
		claims["picture"] = identity.Image
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err, "Failed to sign identity token")
	return signed
}

// CreateIdentityToken signs a 15 minute token with the helper's key.
func (h *TestHelper) CreateIdentityToken(identity models.ExternalIdentity) string {
	return SignIdentityToken(h.T, h.PrivateKey, h.Issuer, identity, 15*time.Minute)
}
