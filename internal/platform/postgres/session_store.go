package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// SessionStore implements store.SessionStore on the user_tokens table.
// The table is the per-user active-token set: a row's presence is what makes
// a validly signed token acceptable.
type SessionStore struct {
	db store.DBTX
}

// NewSessionStore creates a new PostgreSQL implementation of
// store.SessionStore.
func NewSessionStore(db store.DBTX) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &SessionStore{db: db}
}

var _ store.SessionStore = (*SessionStore)(nil)

// Add implements store.SessionStore.Add.
func (s *SessionStore) Add(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO user_tokens (user_id, token, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.db.ExecContext(ctx, query, userID, token, time.Now().UTC()); err != nil {
		log.Error("failed to record session token", "user_id", userID, "error", err)
		return MapError(err)
	}

	return nil
}

// Delete implements store.SessionStore.Delete. Removing an already-absent
// token is a no-op, mirroring a double logout.
func (s *SessionStore) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, token); err != nil {
		log.Error("failed to delete session token", "user_id", userID, "error", err)
		return MapError(err)
	}

	return nil
}

// DeleteAll implements store.SessionStore.DeleteAll.
func (s *SessionStore) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM user_tokens WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		log.Error("failed to delete session tokens", "user_id", userID, "error", err)
		return MapError(err)
	}

	return nil
}

// Exists implements store.SessionStore.Exists.
func (s *SessionStore) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, token).Scan(&exists); err != nil {
		return false, MapError(err)
	}

	return exists, nil
}
