package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"example.com/ya-note/internal/auth"
	"example.com/ya-note/internal/db"
	"example.com/ya-note/internal/notes"
	"example.com/ya-note/internal/server"
	"example.com/ya-note/internal/users"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.AutoMigrate {
			if err := db.Migrate(cfg.DatabaseURL, db.Up); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Msg("migrations applied")
		}

		conn, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		noteRepo, err := notes.NewRepository(ctx, conn.SQL)
		if err != nil {
			return err
		}
		defer noteRepo.Close()
		userRepo := users.NewRepository(conn.SQL)

		handler := server.NewRouter(server.Deps{
			Notes:        noteRepo,
			Users:        userRepo,
			Revocations:  userRepo,
			Health:       conn.SQL.PingContext,
			Tokens:       auth.NewTokens([]byte(cfg.SessionSecret), cfg.SessionTTL),
			SecureCookie: cfg.SessionCookieSecure,
			Logger:       logger,
		})
		return server.Serve(ctx, cfg.HTTPAddr, handler, cfg.ShutdownTimeout, logger)
	},
}

func openDB(ctx context.Context) (*db.DB, error) {
	conn, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}
