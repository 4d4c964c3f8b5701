package main

import (
	"github.com/spf13/cobra"

	"activityScope/internal/config"
	"activityScope/internal/storage/postgres"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMigrate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Down {
		return postgres.MigrateDown(cfg.PGDSN, logger)
	}
	return postgres.Migrate(cfg.PGDSN, logger)
}
