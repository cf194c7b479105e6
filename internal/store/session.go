package store

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore tracks each user's set of active session tokens. A signed
// token authenticates a request only while it is present in this set;
// logout removes one token, logout-all clears the set.
type SessionStore interface {
	// Add records a newly issued token for the user.
	Add(ctx context.Context, userID uuid.UUID, token string) error

	// Delete removes exactly one token from the user's active set (logout).
	// Removing a token that is not present is not an error.
	Delete(ctx context.Context, userID uuid.UUID, token string) error

	// DeleteAll clears the user's entire active set (logout-all).
	DeleteAll(ctx context.Context, userID uuid.UUID) error

	// Exists reports whether the exact token string is in the user's
	// active set.
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}
