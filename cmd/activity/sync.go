package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"activityScope/internal/chain"
	"activityScope/internal/config"
	"activityScope/internal/indexer"
	"activityScope/internal/storage"
	"activityScope/internal/storage/postgres"
)

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}

	accounts, err := indexer.ParseAccountAddresses(cfg.Accounts)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("account list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(cfg.IndexerURL, chain.Options{
		RequestsPerSecond: cfg.RequestsPerSecond,
		PageTTL:           cfg.PageTTL,
	})
	if err != nil {
		return err
	}

	var (
		sink      storage.EventSink
		errorSink storage.ErrorSink
		pgStore   *postgres.Store
	)
	switch cfg.Sink {
	case "postgres":
		if err := postgres.Migrate(cfg.PGDSN, logger); err != nil {
			return err
		}
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		sink, errorSink = pgStore, pgStore
	default:
		sink = storage.NewJsonlStorage(cfg.Out)
		errorSink = storage.NewJsonlStorage(cfg.Errors)
	}

	runID := uuid.NewString()
	logger.Info("sync start",
		zap.String("run_id", runID),
		zap.String("indexer_url", cfg.IndexerURL),
		zap.Int("accounts", len(accounts)),
		zap.Int("page_size", cfg.PageSize),
		zap.String("sink", cfg.Sink),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	for _, account := range accounts {
		runner := indexer.NewRunner(indexer.RunConfig{
			Account:      account,
			PageSize:     cfg.PageSize,
			StartVersion: cfg.FromVersion,
			UntilVersion: cfg.UntilVersion,
			MaxPages:     cfg.MaxPages,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Cursor:       cursorStore(cfg, pgStore, account, len(accounts) > 1),
			RunID:        runID,
		}, client, sink, errorSink, logger)

		summary, err := runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("sync %s: %w", account, err)
		}
		logger.Info("account synced",
			zap.String("account", account),
			zap.Int("pages", summary.Pages),
			zap.Int("events", summary.Events),
			zap.Int("failed", summary.Failed),
			zap.Uint64("cursor", summary.Cursor),
		)
	}
	return nil
}

func cursorStore(cfg config.Config, pgStore *postgres.Store, account string, multi bool) indexer.CursorStore {
	if !cfg.CheckpointEnabled {
		return nil
	}
	if pgStore != nil {
		return &indexer.DBCursorStore{Backend: pgStore, Name: indexer.StateName(account)}
	}
	path := cfg.Checkpoint
	if multi {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "." + account + ext
	}
	return indexer.NewFileCursorStore(path, account)
}
