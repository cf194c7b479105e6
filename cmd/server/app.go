package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/platform/mail"
	"github.com/taskhive/taskhive-api/internal/platform/postgres"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// application holds the wired dependencies shared by the router and server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	taskStore    store.TaskStore
	sessionStore store.SessionStore

	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	mailer           mail.Mailer
}

// newApplication builds the service graph on top of an open database
// connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	var mailer mail.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		logger.Warn("SMTP not configured, outbound mail disabled")
		mailer = mail.NewNoopMailer()
	}

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        postgres.NewUserStore(db),
		taskStore:        postgres.NewTaskStore(db),
		sessionStore:     postgres.NewSessionStore(db),
		tokenService:     tokenService,
		passwordVerifier: auth.NewBcryptVerifier(),
		mailer:           mailer,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
