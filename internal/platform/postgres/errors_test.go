package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows maps to not found", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound},
		{
			"unique violation maps to duplicate",
			&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			store.ErrDuplicate,
		},
		{
			"foreign key violation maps to invalid entity",
			&pgconn.PgError{Code: "23503", ConstraintName: "tasks_user_id_fkey"},
			store.ErrInvalidEntity,
		},
		{
			"check violation maps to invalid entity",
			&pgconn.PgError{Code: "23514", ConstraintName: "users_age_check"},
			store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := MapError(tc.err)
			if tc.wantErr == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.wantErr)
		})
	}

	t.Run("unclassified errors pass through unchanged", func(t *testing.T) {
		t.Parallel()
		err := errors.New("connection refused")
		assert.Equal(t, err, MapError(err))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("unique-ish")))
	assert.False(t, IsUniqueViolation(nil))
}

// fakeResult implements sql.Result with a fixed affected-row count.
type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	t.Run("affected rows pass", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, store.ErrTaskNotFound))
	})

	t.Run("zero rows yields the not-found error", func(t *testing.T) {
		t.Parallel()
		err := CheckRowsAffected(fakeResult{rows: 0}, store.ErrTaskNotFound)
		require.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("result errors propagate", func(t *testing.T) {
		t.Parallel()
		err := CheckRowsAffected(fakeResult{err: assert.AnError}, store.ErrTaskNotFound)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("nil result is rejected", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, CheckRowsAffected(nil, store.ErrTaskNotFound))
	})
}
