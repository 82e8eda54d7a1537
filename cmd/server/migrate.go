package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stuproj/projectshelf/internal/config"
	"github.com/stuproj/projectshelf/internal/infra/db"
	"github.com/stuproj/projectshelf/internal/infra/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			d, err := db.New(cfg)
			if err != nil {
				return err
			}
			if err := db.Migrate(d); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Sugar().Infow("database migrated", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
