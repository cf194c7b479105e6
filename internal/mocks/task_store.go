package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// TaskStore implements store.TaskStore for testing. The default List
// implementation honors filter, sort and pagination options so handler
// tests can exercise real parameter combinations.
type TaskStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, task *domain.Task) error
	GetByIDFn       func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	ListFn          func(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error)
	UpdateFn        func(ctx context.Context, task *domain.Task) error
	DeleteFn        func(ctx context.Context, id, ownerID uuid.UUID) error
	DeleteByOwnerFn func(ctx context.Context, ownerID uuid.UUID) error

	// Data for the default implementation, in insertion order.
	Tasks []*domain.Task
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a new mock store with initialized defaults.
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

// Create implements the TaskStore interface.
func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.Tasks = append(m.Tasks, &copied)
	return nil
}

// GetByID implements the TaskStore interface.
func (m *TaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.Tasks {
		if task.ID == id && task.UserID == ownerID {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// List implements the TaskStore interface.
func (m *TaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*domain.Task{}
	for _, task := range m.Tasks {
		if task.UserID != ownerID {
			continue
		}
		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}

	if opts.SortColumn != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := taskLess(matched[i], matched[j], opts.SortColumn)
			if opts.Descending {
				return !less && taskLess(matched[j], matched[i], opts.SortColumn)
			}
			return less
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			return []*domain.Task{}, nil
		}
		matched = matched[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	return matched, nil
}

func taskLess(a, b *domain.Task, column string) bool {
	switch column {
	case store.TaskSortDescription:
		return strings.Compare(a.Description, b.Description) < 0
	case store.TaskSortCompleted:
		return !a.Completed && b.Completed
	case store.TaskSortUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// Update implements the TaskStore interface.
func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.Tasks {
		if existing.ID == task.ID && existing.UserID == task.UserID {
			copied := *task
			m.Tasks[i] = &copied
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// Delete implements the TaskStore interface.
func (m *TaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, task := range m.Tasks {
		if task.ID == id && task.UserID == ownerID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// DeleteByOwner implements the TaskStore interface.
func (m *TaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	if m.DeleteByOwnerFn != nil {
		return m.DeleteByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Tasks[:0]
	for _, task := range m.Tasks {
		if task.UserID != ownerID {
			kept = append(kept, task)
		}
	}
	m.Tasks = kept
	return nil
}
