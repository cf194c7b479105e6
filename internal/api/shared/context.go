// Package shared holds the request-context keys and JSON response helpers
// used by the handlers and middleware.
package shared

import (
	"context"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// ContextKey is the key type for request-context values.
type ContextKey string

// Context keys set by the authentication middleware.
const (
	// CurrentUserContextKey carries the authenticated *domain.User.
	CurrentUserContextKey ContextKey = "currentUser"

	// AuthTokenContextKey carries the exact bearer token string the request
	// authenticated with; logout revokes precisely this token.
	AuthTokenContextKey ContextKey = "authToken"
)

// CurrentUser returns the authenticated user attached to the context and
// whether one was present.
func CurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(CurrentUserContextKey).(*domain.User)
	return user, ok && user != nil
}

// AuthToken returns the bearer token the request authenticated with and
// whether one was present.
func AuthToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AuthTokenContextKey).(string)
	return token, ok && token != ""
}
