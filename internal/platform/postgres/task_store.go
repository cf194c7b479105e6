package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
// All queries against existing tasks filter on both id and user_id, so a
// task owned by someone else behaves exactly like a missing one.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new PostgreSQL implementation of store.TaskStore.
func NewTaskStore(db store.DBTX) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &TaskStore{db: db}
}

var _ store.TaskStore = (*TaskStore)(nil)

// sortableColumns guards the ORDER BY interpolation in List. ListOptions
// carries a column name, never raw client input, but the check keeps an API
// layer bug from turning into SQL injection.
var sortableColumns = map[string]bool{
	store.TaskSortDescription: true,
	store.TaskSortCompleted:   true,
	store.TaskSortCreatedAt:   true,
	store.TaskSortUpdatedAt:   true,
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (id, description, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Description,
		task.Completed,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			"task_id", task.ID,
			"user_id", task.UserID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	var task domain.Task
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return &task, nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.ListOptions,
) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE user_id = $1`)
	args := []any{ownerID}

	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	column := store.TaskSortCreatedAt
	direction := "ASC"
	if opts.SortColumn != "" {
		if !sortableColumns[opts.SortColumn] {
			return nil, fmt.Errorf("unsortable column %q", opts.SortColumn)
		}
		column = opts.SortColumn
		if opts.Descending {
			direction = "DESC"
		}
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", column, direction)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list tasks", "user_id", ownerID, "error", err)
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn("failed to close task rows", "error", err)
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Description,
			&task.Completed,
			&task.UserID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET description = $1, completed = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Description,
		task.Completed,
		time.Now().UTC(),
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", task.ID,
			"user_id", task.UserID,
			"error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete. The id and owner filters run in
// a single statement so a task owned by someone else can never be removed.
func (s *TaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete task", "task_id", id, "user_id", ownerID, "error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// DeleteByOwner implements store.TaskStore.DeleteByOwner.
func (s *TaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM tasks WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, ownerID); err != nil {
		log.Error("failed to delete tasks for user", "user_id", ownerID, "error", err)
		return MapError(err)
	}

	return nil
}
