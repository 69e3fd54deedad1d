package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ContextKeyIdentity = contextKey("identity")
	ContextKeyUser     = contextKey("user")

	// SessionCookieName is the cookie the web frontend stores the identity
	// token in when it cannot set an Authorization header.
	SessionCookieName = "__session"
)

// AuthMiddleware – for protected endpoints. If the identity token is missing
// or invalid, returns 401. The token is read from Authorization: Bearer ...
// first, then from the SessionCookieName cookie.
func AuthMiddleware(pub *rsa.PublicKey, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractIdentityToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			identity, vErr := ValidateIdentityToken(tokenStr, pub, issuer)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*models.ExternalIdentity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*models.ExternalIdentity)
	return identity, ok && identity != nil
}

// UserFromContext returns the local user stored by CurrentUserMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*models.User)
	return user, ok && user != nil
}

// helper: Bearer header wins over the session cookie
func extractIdentityToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return "", errors.New("malformed Authorization header")
		}
		return strings.TrimPrefix(h, "Bearer "), nil
	}

	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", errors.New("missing identity token")
	}
	return c.Value, nil
}
