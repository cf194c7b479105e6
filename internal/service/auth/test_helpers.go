package auth

import "time"

// NewTestTokenService creates a token service with an injectable time
// function for deterministic expiry testing. A zero lifetime issues
// non-expiring tokens, matching the production default.
func NewTestTokenService(secret string, lifetime time.Duration, timeFunc func() time.Time) TokenService {
	return &hmacTokenService{
		signingKey: []byte(secret),
		lifetime:   lifetime,
		timeFunc:   timeFunc,
		clockSkew:  0,
	}
}
