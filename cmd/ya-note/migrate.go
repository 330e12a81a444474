package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/ya-note/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		dir := db.Up
		if args[0] == "down" {
			dir = db.Down
		}

		if err := db.Migrate(cfg.DatabaseURL, dir); err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		logger.Info().Str("direction", args[0]).Msg("migrations done")
		return nil
	},
}
