package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/mocks"
	"github.com/taskhive/taskhive-api/internal/service/auth"
)

// authFixture wires the middleware against in-memory mocks with one
// registered user holding one active session token.
type authFixture struct {
	middleware *AuthMiddleware
	users      *mocks.UserStore
	sessions   *mocks.SessionStore
	tokens     *mocks.TokenService
	user       *domain.User
	token      string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := mocks.NewUserStore()
	sessions := mocks.NewSessionStore()
	tokens := mocks.NewTokenService()

	user, err := domain.NewUser("Ada", "ada@example.com", 28, "Secret1234")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$notarealhashbutnotempty"
	require.NoError(t, users.Create(context.Background(), user))

	token, err := tokens.IssueToken(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, sessions.Add(context.Background(), user.ID, token))

	return &authFixture{
		middleware: NewAuthMiddleware(tokens, users, sessions),
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		user:       user,
		token:      token,
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("attaches user and token to the request context", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		var gotUser *domain.User
		var gotToken string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, ok := shared.CurrentUser(r.Context())
			require.True(t, ok)
			gotUser = current
			gotToken, _ = shared.AuthToken(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+fx.token)
		rec := httptest.NewRecorder()

		fx.middleware.Authenticate(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, fx.user.ID, gotUser.ID)
		assert.Equal(t, fx.token, gotToken)
	})

	t.Run("rejects revoked token even though signature verifies", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		require.NoError(t, fx.sessions.Delete(context.Background(), fx.user.ID, fx.token))

		rec := doAuthRequest(t, fx, "Bearer "+fx.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects token of a deleted user", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		require.NoError(t, fx.users.Delete(context.Background(), fx.user.ID))

		rec := doAuthRequest(t, fx, "Bearer "+fx.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		fx.tokens.ValidateTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return nil, auth.ErrExpiredToken
		}

		rec := doAuthRequest(t, fx, "Bearer "+fx.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		rec := doAuthRequest(t, fx, "Bearer not-a-real-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		rec := doAuthRequest(t, fx, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		rec := doAuthRequest(t, fx, "Basic "+fx.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects bare token without scheme", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		rec := doAuthRequest(t, fx, fx.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("one user's token does not unlock another user's session set", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		other, err := domain.NewUser("Grace", "grace@example.com", 40, "Secret1234")
		require.NoError(t, err)
		other.Password = ""
		other.HashedPassword = "$2a$10$notarealhashbutnotempty"
		require.NoError(t, fx.users.Create(context.Background(), other))

		otherToken, err := fx.tokens.IssueToken(context.Background(), other.ID)
		require.NoError(t, err)
		// Issued but never added to the session set, as after a logout.
		rec := doAuthRequest(t, fx, "Bearer "+otherToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// doAuthRequest runs a request with the given Authorization header through
// the middleware with a next handler that always returns 200.
func doAuthRequest(t *testing.T, fx *authFixture, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	fx.middleware.Authenticate(next).ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_UnexpectedErrors(t *testing.T) {
	t.Parallel()

	t.Run("session store failure yields 500", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		fx.sessions.ExistsFn = func(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
			return false, assert.AnError
		}

		rec := doAuthRequest(t, fx, "Bearer "+fx.token)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("user store failure yields 500", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		fx.users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, assert.AnError
		}

		rec := doAuthRequest(t, fx, "Bearer "+fx.token)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
