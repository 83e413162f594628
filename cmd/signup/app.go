package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/signup/internal/config"
	"github.com/phrazzld/signup/internal/events"
	"github.com/phrazzld/signup/internal/platform/memory"
	"github.com/phrazzld/signup/internal/platform/postgres"
	"github.com/phrazzld/signup/internal/service"
	"github.com/phrazzld/signup/internal/service/auth"
	"github.com/phrazzld/signup/internal/store"
)

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	jwtService   auth.JWTService
	emitter      *events.InMemoryEventEmitter
	registration *service.RegistrationService
	users        *service.UserService
}

// newApplication wires the stores and services. PostgreSQL is used when a
// database URL is configured, the in-memory store otherwise.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
	}

	if cfg.UsesDatabase() {
		db, err := setupAppDatabase(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, log)
	} else {
		log.Warn("no database configured, users are kept in memory")
		app.userStore = memory.NewUserStore()
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	app.emitter = events.NewInMemoryEventEmitter(log)
	app.emitter.RegisterHandler(events.LoggingHandler{})

	app.registration = service.NewRegistrationService(app.userStore, app.emitter, log)
	app.users = service.NewUserService(app.userStore, log)

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
		app.db = nil
	}
}
