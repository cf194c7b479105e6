package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// taskUpdateAllowlist is the fixed set of fields a task PATCH may carry.
var taskUpdateAllowlist = []string{"description", "completed"}

// sortFields maps client-facing sortBy names onto store columns.
var sortFields = map[string]string{
	"description": store.TaskSortDescription,
	"completed":   store.TaskSortCompleted,
	"createdAt":   store.TaskSortCreatedAt,
	"updatedAt":   store.TaskSortUpdatedAt,
}

// TaskHandler handles task-related API requests. Every operation is scoped
// to the authenticated owner; no parameter combination can reach another
// user's tasks.
type TaskHandler struct {
	tasks     store.TaskStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:     tasks,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks. The owner is always the current user,
// regardless of the payload.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := domain.NewTask(req.Description, user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	task.Completed = req.Completed

	if err := h.tasks.Create(r.Context(), task); err != nil {
		h.logger.Error("failed to create task", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks with the optional query refinements
// completed, sortBy (field:asc|desc), limit and skip.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, opts)
	if err != nil {
		h.logger.Error("failed to list tasks", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// GetByID handles GET /tasks/{id}. A task owned by someone else responds
// exactly like a missing one.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id, user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PATCH /tasks/{id}: allowlist check, ownership-scoped
// fetch, field assignment, persist — in that order.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	fields, err := DecodeAllowlisted(r, taskUpdateAllowlist)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id, user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if raw, present := fields["description"]; present {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "description must be a string")
			return
		}
		task.Description = strings.TrimSpace(description)
	}
	if raw, present := fields["completed"]; present {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "completed must be a boolean")
			return
		}
		task.Completed = completed
	}

	if err := task.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.tasks.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}. The store deletes by id and owner in
// one statement, so there is no window to remove someone else's task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Fetch first so the deleted resource can be returned, as the API
	// contract promises. The delete itself still filters by owner.
	task, err := h.tasks.GetByID(r.Context(), id, user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.tasks.Delete(r.Context(), id, user.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// parseListOptions translates the listing query parameters into store
// options. Malformed values are validation errors, not silent defaults.
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	var opts store.ListOptions
	query := r.URL.Query()

	if raw := query.Get("completed"); raw != "" {
		switch raw {
		case "true":
			val := true
			opts.Completed = &val
		case "false":
			val := false
			opts.Completed = &val
		default:
			return opts, domain.NewValidationError(
				"completed", "must be \"true\" or \"false\"", domain.ErrValidation)
		}
	}

	if raw := query.Get("sortBy"); raw != "" {
		field, direction, _ := strings.Cut(raw, ":")
		column, ok := sortFields[field]
		if !ok {
			return opts, domain.NewValidationError(
				"sortBy", "references an unknown field", domain.ErrValidation)
		}
		opts.SortColumn = column
		opts.Descending = direction == "desc"
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, domain.NewValidationError(
				"limit", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Limit = limit
	}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, domain.NewValidationError(
				"skip", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Skip = skip
	}

	return opts, nil
}
