package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/config"
	"github.com/phrazzld/signup/internal/platform/logger"
	"github.com/phrazzld/signup/internal/platform/postgres"
	"github.com/phrazzld/signup/internal/service/auth"
	"github.com/spf13/cobra"
)

// cliState carries what PersistentPreRunE loaded to the subcommands.
type cliState struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (s *cliState) load(configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	s.cfg = cfg
	s.logger = log
	return nil
}

// serveCommand runs the HTTP server until SIGINT or SIGTERM.
func serveCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}
}

// migrateCommand applies the embedded goose migrations.
func migrateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Manages the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.cfg.UsesDatabase() {
				return errors.New("database.url must be set to run migrations")
			}

			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			ctx := cmd.Context()
			db, err := setupAppDatabase(ctx, state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					state.logger.Warn("failed to close database", "error", err)
				}
			}()

			return postgres.Migrate(ctx, db, command, state.logger)
		},
	}
}

// tokenCommand prints a signed bearer token for an existing user id.
func tokenCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates a bearer token for the given user ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("user-id")
			userID, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", raw, err)
			}

			jwtService, err := auth.NewJWTService(state.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to create JWT service: %w", err)
			}

			token, _, err := jwtService.GenerateToken(cmd.Context(), userID)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().String("user-id", "", "user ID to put in the token subject")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
