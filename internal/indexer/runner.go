package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"activityScope/internal/activity"
	"activityScope/internal/chain"
	"activityScope/internal/model"
	"activityScope/internal/storage"
)

// Source supplies pages of bundles, newest first.
type Source interface {
	AccountActivities(ctx context.Context, query chain.PageQuery) ([]model.Bundle, error)
}

// RunConfig holds runtime settings for one account sync.
type RunConfig struct {
	Account string
	// PageSize is the number of bundles requested per page.
	PageSize int
	// StartVersion is the exclusive upper bound of the first page; zero
	// starts from the latest transaction.
	StartVersion uint64
	// UntilVersion stops the sync once versions at or below it are reached.
	UntilVersion uint64
	// MaxPages caps the pages fetched in one run; zero means no cap.
	MaxPages     int
	MaxRetries   int
	RetryBackoff time.Duration
	// Cursor persists progress between runs; nil disables resume.
	Cursor CursorStore
	RunID  string
}

// Summary reports what a run did.
type Summary struct {
	RunID   string
	Pages   int
	Bundles int
	Events  int
	Failed  int
	Cursor  uint64
}

// Runner pages through an account's history, classifies each bundle and
// writes the events and failures to the sinks.
type Runner struct {
	cfg    RunConfig
	source Source
	sink   storage.EventSink
	errors storage.ErrorSink
	logger *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source Source, sink storage.EventSink, errorSink storage.ErrorSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errorSink == nil {
		errorSink = storage.Discard{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = chain.DefaultPageSize
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Runner{
		cfg:    cfg,
		source: source,
		sink:   sink,
		errors: errorSink,
		logger: logger.With(zap.String("run_id", cfg.RunID), zap.String("account", cfg.Account)),
	}
}

// Run executes the sync loop. It stops on an empty or short page, when the
// cursor reaches UntilVersion, or after MaxPages.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: r.cfg.RunID}
	if r.source == nil {
		return summary, fmt.Errorf("source is nil")
	}
	if r.sink == nil {
		return summary, fmt.Errorf("event sink is nil")
	}
	if r.cfg.Account == "" {
		return summary, fmt.Errorf("account is required")
	}

	cursor := r.cfg.StartVersion
	if r.cfg.Cursor != nil {
		saved, ok, err := r.cfg.Cursor.Load(ctx)
		if err != nil {
			return summary, fmt.Errorf("load cursor: %w", err)
		}
		if ok && (cursor == 0 || saved < cursor) {
			cursor = saved
			r.logger.Info("resume from checkpoint", zap.Uint64("cursor", cursor))
		}
	}
	summary.Cursor = cursor

	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if r.cfg.MaxPages > 0 && summary.Pages >= r.cfg.MaxPages {
			r.logger.Info("page limit reached", zap.Int("pages", summary.Pages))
			break
		}
		if r.cfg.UntilVersion > 0 && cursor != 0 && cursor <= r.cfg.UntilVersion+1 {
			r.logger.Info("until version reached", zap.Uint64("cursor", cursor))
			break
		}

		bundles, err := r.fetchWithRetry(ctx, cursor)
		if err != nil {
			return summary, fmt.Errorf("fetch page below %d: %w", cursor, err)
		}
		if len(bundles) == 0 {
			break
		}

		next, _ := NextCursor(bundles)
		if cursor != 0 && next >= cursor {
			return summary, fmt.Errorf("cursor did not advance: page min version %d, bound %d", next, cursor)
		}

		events, failures := r.classifyPage(bundles)

		if err := r.sink.PutEventBatch(ctx, events); err != nil {
			return summary, fmt.Errorf("store events: %w", err)
		}
		if err := r.errors.PutClassifyErrors(ctx, failures); err != nil {
			return summary, fmt.Errorf("store classify errors: %w", err)
		}

		cursor = next
		if r.cfg.Cursor != nil {
			if err := r.cfg.Cursor.Save(ctx, cursor); err != nil {
				return summary, fmt.Errorf("save cursor: %w", err)
			}
		}

		summary.Pages++
		summary.Bundles += len(bundles)
		summary.Events += len(events)
		summary.Failed += len(failures)
		summary.Cursor = cursor

		r.logger.Info("page complete",
			zap.Int("bundles", len(bundles)),
			zap.Int("events", len(events)),
			zap.Int("failed", len(failures)),
			zap.Uint64("cursor", cursor),
		)

		if len(bundles) < r.cfg.PageSize {
			break
		}
	}

	r.logger.Info("sync complete",
		zap.Int("pages", summary.Pages),
		zap.Int("bundles", summary.Bundles),
		zap.Int("events", summary.Events),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// classifyPage transforms the bundles of a page, skipping those at or below
// UntilVersion. Failed bundles are logged and reported, never retried.
func (r *Runner) classifyPage(bundles []model.Bundle) ([]model.ActivityEvent, []model.ClassifyError) {
	var events []model.ActivityEvent
	var failures []model.ClassifyError
	for _, bundle := range bundles {
		version := uint64(bundle.TransactionVersion)
		if r.cfg.UntilVersion > 0 && version <= r.cfg.UntilVersion {
			continue
		}
		if bundle.AccountAddress == "" {
			bundle.AccountAddress = r.cfg.Account
		}

		bundleEvents, err := activity.Transform(bundle)
		if err != nil {
			r.logger.Warn("classify bundle failed", zap.Uint64("version", version), zap.Error(err))
			failures = append(failures, model.ClassifyError{
				RunID:   r.cfg.RunID,
				Account: bundle.AccountAddress,
				Version: version,
				Kind:    activity.ErrorKind(err),
				Error:   err.Error(),
			})
			continue
		}
		events = append(events, bundleEvents...)
	}
	return events, failures
}

func (r *Runner) fetchWithRetry(ctx context.Context, cursor uint64) ([]model.Bundle, error) {
	query := chain.PageQuery{Address: r.cfg.Account, Limit: r.cfg.PageSize, MaxVersion: cursor}
	var bundles []model.Bundle
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		bundles, err = r.source.AccountActivities(ctx, query)
		if err != nil {
			r.logger.Warn("fetch page failed", zap.Error(err), zap.Uint64("max_version", cursor))
		}
		return err
	})
	return bundles, err
}
