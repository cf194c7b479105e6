package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
//
// None of the read methods return the avatar bytes; those are large and only
// needed by the avatar fetch endpoint, which uses GetAvatar.
type UserStore interface {
	// Create saves a new user to the store. The user's HashedPassword must
	// already be set; plaintext passwords never reach the store layer.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their canonical (lowercased) email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update persists the user's name, email, age and hashed password.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// when updating to an email that is already in use.
	Update(ctx context.Context, user *domain.User) error

	// UpdateAvatar sets the user's avatar bytes; a nil slice clears it.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error

	// GetAvatar returns the raw avatar bytes for a user.
	// Returns ErrAvatarNotFound when the user is missing or has no avatar.
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist. Deleting a user's
	// owned tasks first is the caller's responsibility (see TaskStore).
	Delete(ctx context.Context, id uuid.UUID) error
}
