package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/mocks"
	"github.com/taskhive/taskhive-api/internal/store"
)

// listAll is the zero query: no filter, no sort, no pagination.
func listAll() store.ListOptions {
	return store.ListOptions{}
}

// taskFixture wires a TaskHandler against the in-memory task store with two
// users, so ownership scoping can be exercised.
type taskFixture struct {
	handler *TaskHandler
	tasks   *mocks.TaskStore
	owner   *domain.User
	other   *domain.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	owner, err := domain.NewUser("Ada", "ada@example.com", 28, "Secret1234")
	require.NoError(t, err)
	other, err := domain.NewUser("Grace", "grace@example.com", 40, "Secret1234")
	require.NoError(t, err)

	tasks := mocks.NewTaskStore()
	return &taskFixture{
		handler: NewTaskHandler(tasks, nil),
		tasks:   tasks,
		owner:   owner,
		other:   other,
	}
}

// seedTask inserts a task with controlled attributes. The creation time is
// offset so sort tests have a stable order.
func (fx *taskFixture) seedTask(t *testing.T, owner *domain.User, description string, completed bool, offset time.Duration) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(description, owner.ID)
	require.NoError(t, err)
	task.Completed = completed
	task.CreatedAt = task.CreatedAt.Add(offset)
	task.UpdatedAt = task.CreatedAt
	require.NoError(t, fx.tasks.Create(context.Background(), task))
	return task
}

func taskRequest(method, target string, body string, user *domain.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), shared.CurrentUserContextKey, user)
	return req.WithContext(ctx)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("owner is always the current user", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)

		req := taskRequest(http.MethodPost, "/tasks",
			`{"description":"buy milk","completed":true}`, fx.owner)
		rec := httptest.NewRecorder()
		fx.handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeBody[TaskResponse](t, rec)
		assert.Equal(t, "buy milk", resp.Description)
		assert.True(t, resp.Completed)
		assert.Equal(t, fx.owner.ID, resp.UserID)

		stored, err := fx.tasks.GetByID(context.Background(), resp.ID, fx.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", stored.Description)
	})

	t.Run("rejects missing description", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)

		req := taskRequest(http.MethodPost, "/tasks", `{"completed":true}`, fx.owner)
		rec := httptest.NewRecorder()
		fx.handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects whitespace-only description", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)

		req := taskRequest(http.MethodPost, "/tasks", `{"description":"   "}`, fx.owner)
		rec := httptest.NewRecorder()
		fx.handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	// Three owner tasks in a known creation order, plus someone else's.
	seed := func(t *testing.T) (*taskFixture, []*domain.Task) {
		fx := newTaskFixture(t)
		a := fx.seedTask(t, fx.owner, "alpha", false, 0)
		b := fx.seedTask(t, fx.owner, "bravo", true, time.Second)
		c := fx.seedTask(t, fx.owner, "charlie", false, 2*time.Second)
		fx.seedTask(t, fx.other, "zulu", true, 3*time.Second)
		return fx, []*domain.Task{a, b, c}
	}

	list := func(t *testing.T, fx *taskFixture, query string) *httptest.ResponseRecorder {
		t.Helper()
		req := taskRequest(http.MethodGet, "/tasks"+query, "", fx.owner)
		rec := httptest.NewRecorder()
		fx.handler.List(rec, req)
		return rec
	}

	descriptions := func(t *testing.T, rec *httptest.ResponseRecorder) []string {
		t.Helper()
		tasks := decodeBody[[]TaskResponse](t, rec)
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Description)
		}
		return out
	}

	t.Run("returns only the owner's tasks", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)
		rec := list(t, fx, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, descriptions(t, rec))
	})

	t.Run("filters by completion", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)

		rec := list(t, fx, "?completed=true")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"bravo"}, descriptions(t, rec))

		rec = list(t, fx, "?completed=false")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"alpha", "charlie"}, descriptions(t, rec))
	})

	t.Run("rejects non-boolean completed", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)
		rec := list(t, fx, "?completed=banana")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sorts descending when asked", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)
		rec := list(t, fx, "?sortBy=description:desc")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"charlie", "bravo", "alpha"}, descriptions(t, rec))
	})

	t.Run("defaults to ascending for any other direction", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)
		rec := list(t, fx, "?sortBy=createdAt:sideways")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, descriptions(t, rec))
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)
		rec := list(t, fx, "?sortBy=priority:asc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("paginates with limit and skip", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)

		rec := list(t, fx, "?limit=2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"alpha", "bravo"}, descriptions(t, rec))

		rec = list(t, fx, "?skip=1&limit=2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"bravo", "charlie"}, descriptions(t, rec))

		rec = list(t, fx, "?skip=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, descriptions(t, rec))
	})

	t.Run("rejects malformed pagination values", func(t *testing.T) {
		t.Parallel()
		fx, _ := seed(t)

		assert.Equal(t, http.StatusBadRequest, list(t, fx, "?limit=-1").Code)
		assert.Equal(t, http.StatusBadRequest, list(t, fx, "?limit=ten").Code)
		assert.Equal(t, http.StatusBadRequest, list(t, fx, "?skip=-2").Code)
		assert.Equal(t, http.StatusBadRequest, list(t, fx, "?skip=few").Code)
	})
}

func TestGetTaskByID(t *testing.T) {
	t.Parallel()

	t.Run("returns the owner's task", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodGet, "/tasks/"+task.ID.String(), "", fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.GetByID(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, task.ID, decodeBody[TaskResponse](t, rec).ID)
	})

	t.Run("someone else's task reads as missing", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.other, "zulu", false, 0)

		req := taskRequest(http.MethodGet, "/tasks/"+task.ID.String(), "", fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.GetByID(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)

		req := taskRequest(http.MethodGet, "/tasks/42", "", fx.owner)
		req = withURLParam(req, "id", "42")
		rec := httptest.NewRecorder()
		fx.handler.GetByID(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("updates allowlisted fields", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"description":"  alpha revised ","completed":true}`, fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Update(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		stored, err := fx.tasks.GetByID(context.Background(), task.ID, fx.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "alpha revised", stored.Description)
		assert.True(t, stored.Completed)
	})

	t.Run("rejects unknown fields without mutating anything", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"completed":true,"owner":"someone-else"}`, fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Update(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid field inclusion. Allowed field(s) are: description, completed",
			decodeBody[shared.ErrorResponse](t, rec).Error)

		stored, err := fx.tasks.GetByID(context.Background(), task.ID, fx.owner.ID)
		require.NoError(t, err)
		assert.False(t, stored.Completed)
	})

	t.Run("someone else's task reads as missing", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.other, "zulu", false, 0)

		req := taskRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"completed":true}`, fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Update(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		stored, err := fx.tasks.GetByID(context.Background(), task.ID, fx.other.ID)
		require.NoError(t, err)
		assert.False(t, stored.Completed)
	})

	t.Run("rejects mistyped field values", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"completed":"yes"}`, fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Update(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "completed must be a boolean", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("rejects emptying the description", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"description":"  "}`, fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Update(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("returns the deleted task", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.owner, "alpha", false, 0)

		req := taskRequest(http.MethodDelete, "/tasks/"+task.ID.String(), "", fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Delete(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, task.ID, decodeBody[TaskResponse](t, rec).ID)

		_, err := fx.tasks.GetByID(context.Background(), task.ID, fx.owner.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("someone else's task reads as missing and survives", func(t *testing.T) {
		t.Parallel()
		fx := newTaskFixture(t)
		task := fx.seedTask(t, fx.other, "zulu", false, 0)

		req := taskRequest(http.MethodDelete, "/tasks/"+task.ID.String(), "", fx.owner)
		req = withURLParam(req, "id", task.ID.String())
		rec := httptest.NewRecorder()
		fx.handler.Delete(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		_, err := fx.tasks.GetByID(context.Background(), task.ID, fx.other.ID)
		assert.NoError(t, err)
	})
}

func TestDecodeAllowlisted(t *testing.T) {
	t.Parallel()

	t.Run("empty body updates nothing but is accepted", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/x", strings.NewReader(`{}`))
		fields, err := DecodeAllowlisted(req, []string{"description", "completed"})
		require.NoError(t, err)
		assert.Empty(t, fields)
	})

	t.Run("preserves allowed raw fields", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/x",
			strings.NewReader(`{"description":"d","completed":true}`))
		fields, err := DecodeAllowlisted(req, []string{"description", "completed"})
		require.NoError(t, err)
		assert.Len(t, fields, 2)
	})

	t.Run("a single stray key rejects the whole request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPatch, "/tasks/x",
			strings.NewReader(`{"description":"d","priority":1}`))
		_, err := DecodeAllowlisted(req, []string{"description", "completed"})
		require.ErrorIs(t, err, ErrInvalidFieldInclusion)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestParseListOptions(t *testing.T) {
	t.Parallel()

	t.Run("maps camelCase sort fields onto store columns", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks?sortBy=createdAt:desc", nil)
		opts, err := parseListOptions(req)
		require.NoError(t, err)
		assert.Equal(t, store.TaskSortCreatedAt, opts.SortColumn)
		assert.True(t, opts.Descending)
	})

	t.Run("zero options for a bare query", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		opts, err := parseListOptions(req)
		require.NoError(t, err)
		assert.Equal(t, listAll(), opts)
	})
}
