package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/config"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secret", func(t *testing.T) {
		t.Parallel()
		_, err := NewTokenService(config.AuthConfig{JWTSecret: "too-short"})
		require.Error(t, err)
	})

	t.Run("accepts valid config", func(t *testing.T) {
		t.Parallel()
		svc, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret})
		require.NoError(t, err)
		require.NotNil(t, svc)
	})
}

func TestIssueToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })

	t.Run("issues valid token bound to the user", func(t *testing.T) {
		t.Parallel()
		token, err := svc.IssueToken(context.Background(), userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("issues distinct tokens per call", func(t *testing.T) {
		t.Parallel()
		first, err := svc.IssueToken(context.Background(), userID)
		require.NoError(t, err)
		second, err := svc.IssueToken(context.Background(), userID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		// Both remain independently valid.
		for _, token := range []string{first, second} {
			claims, err := svc.ValidateToken(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		}
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func() (TokenService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				token, _ := svc.IssueToken(context.Background(), userID)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "non-expiring token long after issuance",
			setupFunc: func() (TokenService, string) {
				genSvc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				token, _ := genSvc.IssueToken(context.Background(), userID)
				valSvc := NewTestTokenService(testSecret, 0, func() time.Time {
					return fixedTime.Add(1000 * time.Hour)
				})
				return valSvc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token when lifetime configured",
			setupFunc: func() (TokenService, string) {
				lifetime := time.Hour
				genSvc := NewTestTokenService(testSecret, lifetime, func() time.Time { return fixedTime })
				token, _ := genSvc.IssueToken(context.Background(), userID)
				valSvc := NewTestTokenService(testSecret, lifetime, func() time.Time {
					return fixedTime.Add(2 * time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong signing key",
			setupFunc: func() (TokenService, string) {
				genSvc := NewTestTokenService(
					"wrong-secret-that-is-long-enough-for-tests", 0,
					func() time.Time { return fixedTime })
				token, _ := genSvc.IssueToken(context.Background(), userID)
				valSvc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "tampered payload",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				token, _ := svc.IssueToken(context.Background(), userID)
				parts := strings.Split(token, ".")
				parts[1] = strings.Repeat("A", len(parts[1]))
				return svc, strings.Join(parts, ".")
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				return svc, "not-a-jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, 0, func() time.Time { return fixedTime })
				return svc, ""
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tc.setupFunc()

			claims, err := svc.ValidateToken(context.Background(), token)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
