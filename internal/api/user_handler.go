// Package api provides the HTTP handlers for the API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/imaging"
	"github.com/taskhive/taskhive-api/internal/platform/mail"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// userUpdateAllowlist is the fixed set of fields a profile PATCH may carry.
var userUpdateAllowlist = []string{"name", "email", "password", "age"}

// UserHandler handles user-related API requests: signup, login, session
// management, profile CRUD and avatars.
type UserHandler struct {
	users     store.UserStore
	tasks     store.TaskStore
	sessions  store.SessionStore
	tokens    auth.TokenService
	verifier  auth.PasswordVerifier
	mailer    mail.Mailer
	processor *imaging.Processor
	validator *validator.Validate
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	users store.UserStore,
	tasks store.TaskStore,
	sessions store.SessionStore,
	tokens auth.TokenService,
	verifier auth.PasswordVerifier,
	mailer mail.Mailer,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:     users,
		tasks:     tasks,
		sessions:  sessions,
		tokens:    tokens,
		verifier:  verifier,
		mailer:    mailer,
		processor: imaging.NewProcessor(),
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "user_handler")),
	}
}

// issueSession signs a fresh token and records it in the user's active set.
// Tokens append rather than replace, so concurrent sessions stay valid.
func (h *UserHandler) issueSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := h.tokens.IssueToken(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if err := h.sessions.Add(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Signup handles POST /users.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Age, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Hash before anything touches the store; the plaintext never leaves
	// this handler.
	hashed, err := auth.HashPassword(user.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			HandleAPIError(w, r, err, "")
			return
		}
		h.logger.Error("failed to create user", "error", err, "email", user.Email)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Fire-and-forget; a mail outage must not fail the signup.
	go func() {
		if err := h.mailer.SendWelcome(context.Background(), user.Email, user.Name); err != nil {
			h.logger.Warn("failed to send welcome mail", "error", err, "email", user.Email)
		}
	}()

	token, err := h.issueSession(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login. An unknown email and a wrong password
// produce the same response so neither can be probed.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
			return
		}
		h.logger.Error("failed to get user by email", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.verifier.Compare(user.HashedPassword, req.Password); err != nil {
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}

	token, err := h.issueSession(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout. Only the token the request
// authenticated with is revoked; other sessions stay valid.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, token, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), user.ID, token); err != nil {
		h.logger.Error("failed to revoke token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// LogoutAll handles POST /users/logout-all, revoking every active session.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.DeleteAll(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to revoke tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// GetByID handles GET /users/{id}. Any authenticated user may look up any
// profile; the response is sanitized either way.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateMe handles PATCH /users/me. Field names are validated against the
// allowlist before any mutation occurs; the password is re-hashed only when
// the request actually carries one.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	fields, err := DecodeAllowlisted(r, userUpdateAllowlist)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if raw, present := fields["name"]; present {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "name must be a string")
			return
		}
		user.Name = strings.TrimSpace(name)
	}
	if raw, present := fields["email"]; present {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "email must be a string")
			return
		}
		user.Email = domain.NormalizeEmail(email)
	}
	if raw, present := fields["age"]; present {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "age must be a number")
			return
		}
		user.Age = age
	}
	if raw, present := fields["password"]; present {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "password must be a string")
			return
		}
		if err := domain.ValidatePassword(password); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		hashed, err := auth.HashPassword(password)
		if err != nil {
			h.logger.Error("failed to hash password", "error", err, "user_id", user.ID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update user")
			return
		}
		user.HashedPassword = hashed
	}

	if err := user.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// DeleteMe handles DELETE /users/me. Owned tasks are cascaded before the
// user row goes away; session tokens die with the user.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteByOwner(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to cascade task deletion", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	go func() {
		if err := h.mailer.SendCancellation(context.Background(), user.Email, user.Name); err != nil {
			h.logger.Warn("failed to send cancellation mail", "error", err, "email", user.Email)
		}
	}()

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UploadAvatar handles POST /users/me/avatar. The multipart field must be
// named "avatar"; validation failures return their message, everything else
// is a generic 500.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes*2)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Avatar file is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Warn("failed to close upload", "error", err)
		}
	}()

	if err := imaging.ValidateUpload(header.Filename, header.Size); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadBytes+1))
	if err != nil {
		h.logger.Error("failed to read upload", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}
	if len(data) > imaging.MaxUploadBytes {
		HandleAPIError(w, r, imaging.ErrTooLarge, "")
		return
	}

	avatar, err := h.processor.Process(data)
	if err != nil {
		if imaging.IsValidationError(err) {
			HandleAPIError(w, r, err, "")
			return
		}
		h.logger.Error("failed to process avatar", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	if err := h.users.UpdateAvatar(r.Context(), user.ID, avatar); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Avatar uploaded successfully"})
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	if err := h.users.UpdateAvatar(r.Context(), user.ID, nil); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Avatar deleted successfully"})
}

// GetAvatar handles GET /users/avatar/{id}. Unauthenticated; responds with
// the raw PNG bytes.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	avatar, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(avatar); err != nil {
		h.logger.Error("failed to write avatar response", "error", err)
	}
}

// currentSession pulls the authenticated user and token from the request
// context, writing a 401 when the middleware didn't run.
func (h *UserHandler) currentSession(w http.ResponseWriter, r *http.Request) (*domain.User, string, bool) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		h.logger.Warn("authenticated user missing from request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, "", false
	}
	token, _ := shared.AuthToken(r.Context())
	return user, token, true
}
