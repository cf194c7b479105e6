// Package middleware provides the HTTP middleware for the API, most notably
// bearer-token authentication.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// AuthMiddleware provides bearer-token authentication for routes.
//
// A request is authenticated only when the token's signature verifies AND
// the exact token string is still present in the resolved user's active
// session set; a validly signed but revoked token is rejected.
type AuthMiddleware struct {
	tokens   auth.TokenService
	users    store.UserStore
	sessions store.SessionStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(
	tokens auth.TokenService,
	users store.UserStore,
	sessions store.SessionStore,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		users:    users,
		sessions: sessions,
	}
}

// Authenticate validates the Authorization header, resolves the user and
// attaches both user and token to the request context for downstream
// handlers. Requests failing any step are rejected with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}
		token := parts[1]

		claims, err := m.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case auth.ErrInvalidToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if store.IsNotFoundError(err) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			slog.Error("failed to resolve token user", "error", err, "user_id", claims.UserID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		// Signature alone is not enough: the token must still be in the
		// user's active set, otherwise it was revoked by a logout.
		active, err := m.sessions.Exists(r.Context(), user.ID, token)
		if err != nil {
			slog.Error("failed to check session token", "error", err, "user_id", user.ID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}
		if !active {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), shared.CurrentUserContextKey, user)
		ctx = context.WithValue(ctx, shared.AuthTokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
