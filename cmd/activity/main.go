package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "activity",
		Short:        "Aptos account activity classifier",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading ACTIVITY_* variables")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch account history from the indexer and classify it",
		RunE:  runSync,
	}

	syncCmd.Flags().String("indexer-url", "", "indexer GraphQL endpoint")
	syncCmd.Flags().StringSlice("account", nil, "account addresses (comma-separated)")
	syncCmd.Flags().Int("page-size", 10, "transactions per indexer page")
	syncCmd.Flags().Uint64("from-version", 0, "exclusive upper version bound to start from, 0 means latest")
	syncCmd.Flags().Uint64("until-version", 0, "stop at this version (inclusive), 0 means full history")
	syncCmd.Flags().Int("max-pages", 0, "maximum pages per account, 0 means no limit")
	syncCmd.Flags().String("sink", "jsonl", "event sink (jsonl, postgres)")
	syncCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL path")
	syncCmd.Flags().String("errors", "./data/classify_errors.jsonl", "classify errors JSONL path")
	syncCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	syncCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path (jsonl sink)")
	syncCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	syncCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	syncCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	syncCmd.Flags().Float64("requests-per-second", 5, "indexer request rate limit, 0 disables")
	syncCmd.Flags().Duration("page-ttl", 60*time.Second, "how long fetched pages are reused")
	syncCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(syncCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify transaction bundles from a JSONL file",
		RunE:  runClassify,
	}

	classifyCmd.Flags().String("in", "", "input bundles JSONL")
	classifyCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL")
	classifyCmd.Flags().String("errors", "./data/classify_errors.jsonl", "classify errors JSONL")
	classifyCmd.Flags().String("account", "", "observed account, overrides account_address in the input")
	classifyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(classifyCmd)

	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Group classified events into display sections",
		RunE:  runFeed,
	}

	feedCmd.Flags().String("in", "./data/events.jsonl", "input events JSONL")
	feedCmd.Flags().String("now", "", "reference time (unix seconds or RFC3339), defaults to the current time")
	feedCmd.Flags().String("filter", "", "event categories to keep (coins, nfts, fees)")
	feedCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(feedCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve grouped account activity over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	serveCmd.Flags().Int("page-size", 10, "default transactions per page")
	serveCmd.Flags().Int("max-page-size", 100, "maximum transactions per page")
	serveCmd.Flags().Float64("requests-per-second", 10, "request rate limit, 0 disables")
	serveCmd.Flags().Int("burst", 30, "request burst size")
	serveCmd.Flags().Duration("cache-ttl", 60*time.Second, "page cache lifetime")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().Bool("down", false, "revert all migrations")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
