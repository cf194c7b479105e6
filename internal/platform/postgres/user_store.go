package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// UserStore implements the store.UserStore interface using PostgreSQL.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a new PostgreSQL implementation of store.UserStore.
// The connection (or transaction) is initialized and managed by the caller.
func NewUserStore(db store.DBTX) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// userColumns are the fields scanned for regular user reads. The avatar is
// deliberately excluded; it is only fetched by GetAvatar.
const userColumns = "id, name, email, age, hashed_password, created_at, updated_at"

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO users (id, name, email, age, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Age,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		log.Error("failed to insert user", "user_id", user.ID, "error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(ctx, query, id)
}

// GetByEmail implements store.UserStore.GetByEmail. The email is matched in
// its canonical lowercased form.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(ctx, query, domain.NormalizeEmail(email))
}

func (s *UserStore) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Age,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// Update implements store.UserStore.Update. It persists the mutable profile
// fields; avatar bytes are handled separately by UpdateAvatar.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE users
		SET name = $1, email = $2, age = $3, hashed_password = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Age,
		user.HashedPassword,
		time.Now().UTC(),
		user.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		log.Error("failed to update user", "user_id", user.ID, "error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// UpdateAvatar implements store.UserStore.UpdateAvatar. A nil avatar clears
// the column.
func (s *UserStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error {
	log := logger.FromContext(ctx)

	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, avatar, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update avatar", "user_id", id, "error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// GetAvatar implements store.UserStore.GetAvatar.
func (s *UserStore) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	query := `SELECT avatar FROM users WHERE id = $1`

	var avatar []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&avatar)
	if err != nil {
		if IsNoRows(err) {
			return nil, store.ErrAvatarNotFound
		}
		return nil, MapError(err)
	}
	if len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}

	return avatar, nil
}

// Delete implements store.UserStore.Delete. Rows in user_tokens go with the
// user via their ON DELETE CASCADE foreign key; owned tasks must be removed
// by the caller beforehand.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM users WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete user", "user_id", id, "error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}
