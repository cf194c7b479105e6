package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrRevokedToken indicates a validly signed token that is no longer in
	// its owner's active set (the user logged out).
	ErrRevokedToken = errors.New("authentication token has been revoked")

	// ErrInvalidCredentials indicates a failed login. The same error covers
	// an unknown email and a wrong password so callers cannot tell which.
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)
