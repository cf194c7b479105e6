package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/store"
)

// SessionStore implements store.SessionStore for testing.
type SessionStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	AddFn       func(ctx context.Context, userID uuid.UUID, token string) error
	DeleteFn    func(ctx context.Context, userID uuid.UUID, token string) error
	DeleteAllFn func(ctx context.Context, userID uuid.UUID) error
	ExistsFn    func(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// Tokens holds each user's active set for the default implementation.
	Tokens map[uuid.UUID]map[string]bool
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new mock store with initialized defaults.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		Tokens: make(map[uuid.UUID]map[string]bool),
	}
}

// Add implements the SessionStore interface.
func (m *SessionStore) Add(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tokens[userID] == nil {
		m.Tokens[userID] = make(map[string]bool)
	}
	m.Tokens[userID][token] = true
	return nil
}

// Delete implements the SessionStore interface.
func (m *SessionStore) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Tokens[userID], token)
	return nil
}

// DeleteAll implements the SessionStore interface.
func (m *SessionStore) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Tokens, userID)
	return nil
}

// Exists implements the SessionStore interface.
func (m *SessionStore) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Tokens[userID][token], nil
}

// Count returns the number of active tokens for a user.
func (m *SessionStore) Count(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tokens[userID])
}
