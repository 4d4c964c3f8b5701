package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"activityScope/internal/config"
	"activityScope/internal/feed"
	"activityScope/internal/storage"
)

func runFeed(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFeed(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	filter, err := feed.ParseFilter(cfg.Filter)
	if err != nil {
		return err
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	events, err := storage.ReadEvents(inputFile)
	if err != nil {
		return err
	}

	sections := feed.GroupByTime(filter.Apply(events), now)
	logger.Debug("feed grouped", zap.Int("events", len(events)), zap.Int("sections", len(sections)))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if sections == nil {
		sections = []feed.Section{}
	}
	return encoder.Encode(sections)
}
