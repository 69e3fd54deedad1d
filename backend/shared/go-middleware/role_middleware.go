package middleware

import (
	"context"
	"net/http"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

// UserResolver maps an authenticated identity to a local user, creating it
// on first sight.
type UserResolver interface {
	EnsureUser(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error)
}

// CurrentUserMiddleware must run after AuthMiddleware. It resolves the local
// user for the request's identity and stores it under ContextKeyUser.
func CurrentUserMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing identity", nil,
				)
				return
			}

			user, err := resolver.EnsureUser(r.Context(), identity)
			if err != nil {
				utils.HandleAppError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects users holding none of the given roles with 403.
func RequireRole(roles ...models.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing user", nil,
				)
				return
			}
			if !user.HasRole(roles...) {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
