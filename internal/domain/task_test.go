package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	t.Run("trims description and defaults to incomplete", func(t *testing.T) {
		t.Parallel()
		task, err := NewTask("  buy milk  ", owner)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", task.Description)
		assert.False(t, task.Completed)
		assert.Equal(t, owner, task.UserID)
	})

	t.Run("rejects empty description", func(t *testing.T) {
		t.Parallel()
		_, err := NewTask("   ", owner)
		require.ErrorIs(t, err, ErrEmptyDescription)
	})

	t.Run("rejects missing owner", func(t *testing.T) {
		t.Parallel()
		_, err := NewTask("buy milk", uuid.Nil)
		require.ErrorIs(t, err, ErrEmptyTaskOwner)
	})
}
