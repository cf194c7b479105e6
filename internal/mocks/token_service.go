package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/service/auth"
)

// TokenService implements auth.TokenService for testing. The default
// implementation issues unique opaque strings encoding the user ID and
// validates only what it issued, without any cryptography.
type TokenService struct {
	// Function fields for customizable behavior
	IssueTokenFn    func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	counter atomic.Int64
}

var _ auth.TokenService = (*TokenService)(nil)

// NewTokenService creates a new mock token service.
func NewTokenService() *TokenService {
	return &TokenService{}
}

// IssueToken implements the TokenService interface.
func (m *TokenService) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, userID)
	}
	return fmt.Sprintf("token-%s-%d", userID, m.counter.Add(1)), nil
}

// ValidateToken implements the TokenService interface.
func (m *TokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	trimmed, ok := strings.CutPrefix(tokenString, "token-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	idPart := trimmed
	if i := strings.LastIndexByte(trimmed, '-'); i > 0 {
		idPart = trimmed[:i]
	}
	userID, err := uuid.Parse(idPart)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	return &auth.Claims{
		UserID:   userID,
		IssuedAt: time.Now().UTC(),
		ID:       tokenString,
	}, nil
}
