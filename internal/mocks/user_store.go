package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// UserStore implements store.UserStore for testing.
type UserStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, user *domain.User) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn   func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn       func(ctx context.Context, user *domain.User) error
	UpdateAvatarFn func(ctx context.Context, id uuid.UUID, avatar []byte) error
	GetAvatarFn    func(ctx context.Context, id uuid.UUID) ([]byte, error)
	DeleteFn       func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation
	Users   map[uuid.UUID]*domain.User
	Avatars map[uuid.UUID][]byte
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a new mock store with initialized defaults.
func NewUserStore() *UserStore {
	return &UserStore{
		Users:   make(map[uuid.UUID]*domain.User),
		Avatars: make(map[uuid.UUID][]byte),
	}
}

// Create implements the UserStore interface.
func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

// GetByID implements the UserStore interface.
func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.Users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByEmail implements the UserStore interface.
func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.Email == domain.NormalizeEmail(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface.
func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[user.ID]; !exists {
		return store.ErrUserNotFound
	}
	for id, existing := range m.Users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

// UpdateAvatar implements the UserStore interface.
func (m *UserStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error {
	if m.UpdateAvatarFn != nil {
		return m.UpdateAvatarFn(ctx, id, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[id]; !exists {
		return store.ErrUserNotFound
	}
	if avatar == nil {
		delete(m.Avatars, id)
		return nil
	}
	m.Avatars[id] = avatar
	return nil
}

// GetAvatar implements the UserStore interface.
func (m *UserStore) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if m.GetAvatarFn != nil {
		return m.GetAvatarFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	avatar, exists := m.Avatars[id]
	if !exists || len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return avatar, nil
}

// Delete implements the UserStore interface.
func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[id]; !exists {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	delete(m.Avatars, id)
	return nil
}
