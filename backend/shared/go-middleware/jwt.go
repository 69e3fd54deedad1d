package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims the auth provider puts in its identity
// tokens. Only the subject is mandatory.
type IdentityClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// ValidateIdentityToken checks the token's RS256 signature, expiry and
// issuer and returns the identity it carries.
//
// Any deviation returns a descriptive error; an expired token wraps
// jwt.ErrTokenExpired.
func ValidateIdentityToken(tokenString string, publicKey *rsa.PublicKey, issuer string) (*models.ExternalIdentity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}

	return &models.ExternalIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Image:   claims.Picture,
	}, nil
}
