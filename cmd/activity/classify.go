package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"activityScope/internal/activity"
	"activityScope/internal/config"
	"activityScope/internal/indexer"
	"activityScope/internal/model"
	"activityScope/internal/storage"
)

const (
	kindDecode        = "decode"
	classifyBatchSize = 500
)

func runClassify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadClassify(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	account := ""
	if cfg.Account != "" {
		account, err = indexer.ParseAccountAddress(cfg.Account)
		if err != nil {
			return err
		}
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outSink, err := storage.CreateJsonlStorage(cfg.Out)
	if err != nil {
		return err
	}
	errSink, err := storage.CreateJsonlStorage(cfg.Errors)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger.Info("classify start",
		zap.String("run_id", runID),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	ctx := cmd.Context()
	var pending []model.ActivityEvent
	var pendingErrors []model.ClassifyError
	flush := func() error {
		if err := outSink.PutEventBatch(ctx, pending); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
		if err := errSink.PutClassifyErrors(ctx, pendingErrors); err != nil {
			return fmt.Errorf("write classify errors: %w", err)
		}
		pending, pendingErrors = pending[:0], pendingErrors[:0]
		return nil
	}

	var total, bundles, events, failed int
	err = storage.ScanLines(inputFile, func(lineNo int, line []byte) error {
		total++

		var bundle model.Bundle
		if err := json.Unmarshal(line, &bundle); err != nil {
			failed++
			logger.Warn("decode bundle failed", zap.Int("line", lineNo), zap.Error(err))
			pendingErrors = append(pendingErrors, model.ClassifyError{
				RunID: runID,
				Kind:  kindDecode,
				Error: fmt.Sprintf("line %d: %v", lineNo, err),
			})
		} else {
			if account != "" {
				bundle.AccountAddress = account
			}
			bundles++

			classified, err := activity.Transform(bundle)
			if err != nil {
				failed++
				logger.Warn("classify bundle failed",
					zap.Uint64("version", uint64(bundle.TransactionVersion)),
					zap.String("account", bundle.AccountAddress),
					zap.Error(err),
				)
				pendingErrors = append(pendingErrors, model.ClassifyError{
					RunID:   runID,
					Account: bundle.AccountAddress,
					Version: uint64(bundle.TransactionVersion),
					Kind:    activity.ErrorKind(err),
					Error:   err.Error(),
				})
			} else {
				pending = append(pending, classified...)
				events += len(classified)
			}
		}

		if len(pending)+len(pendingErrors) >= classifyBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("classify complete",
		zap.Int("total", total),
		zap.Int("bundles", bundles),
		zap.Int("events", events),
		zap.Int("failed", failed),
	)
	return nil
}
