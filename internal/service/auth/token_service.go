// Package auth provides session-token issuance/validation and password
// hashing for the API. Token revocation state lives in store.SessionStore;
// this package only handles the cryptographic half of the contract.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for managing signed session tokens.
type TokenService interface {
	// IssueToken creates a signed token bound to the user's identity.
	// The caller is responsible for recording it in the user's active set.
	IssueToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the token's signature and extracts its claims.
	// Returns ErrInvalidToken on malformed tokens or bad signatures and
	// ErrExpiredToken when an expiry was set and has passed.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims carries the validated content of a session token.
type Claims struct {
	// UserID is the identity the token was issued for.
	UserID uuid.UUID

	// IssuedAt is when the token was signed.
	IssuedAt time.Time

	// ID is the unique token identifier (jti claim).
	ID string
}
