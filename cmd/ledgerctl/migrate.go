package main

import (
	"github.com/spf13/cobra"

	"contracting/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := db.RunMigrations(ctx, pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			logger.Info().Msg("database is up to date")
			return nil
		}
		logger.Info().Strs("versions", applied).Msg("migrations applied")
		return nil
	},
}
