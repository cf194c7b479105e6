package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// Sortable task columns. ListOptions.SortColumn must be one of these;
// the API layer maps client-facing field names onto them.
const (
	TaskSortDescription = "description"
	TaskSortCompleted   = "completed"
	TaskSortCreatedAt   = "created_at"
	TaskSortUpdatedAt   = "updated_at"
)

// ListOptions narrows and orders a task listing. The zero value lists all
// of the owner's tasks in creation order.
type ListOptions struct {
	// Completed filters on the completed flag when non-nil.
	Completed *bool

	// SortColumn orders the result set when non-empty. It must be one of
	// the TaskSort* constants; implementations may interpolate it into SQL.
	SortColumn string

	// Descending reverses the sort order. Only meaningful with SortColumn.
	Descending bool

	// Limit caps the number of returned tasks when > 0.
	Limit int

	// Skip drops that many tasks from the start of the result set when > 0.
	Skip int
}

// TaskStore defines the interface for task data persistence. Every read and
// mutation of an existing task is scoped by owner: a task that exists but
// belongs to another user is indistinguishable from one that doesn't exist.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if no matching task is owned by ownerID.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks, refined by opts.
	List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]*domain.Task, error)

	// Update persists the task's description and completed flag, scoped to
	// task.UserID. Returns ErrTaskNotFound if no matching task is owned by
	// that user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID and owner in a single statement.
	// Returns ErrTaskNotFound if no matching task is owned by ownerID.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteByOwner removes every task owned by the given user. Used when
	// cascading a user deletion; deleting zero tasks is not an error.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}
