package storage

import (
	"context"

	"activityScope/internal/model"
)

// EventSink receives classified events in page order.
type EventSink interface {
	PutEventBatch(ctx context.Context, events []model.ActivityEvent) error
}

// ErrorSink receives records of bundles that failed classification.
type ErrorSink interface {
	PutClassifyErrors(ctx context.Context, records []model.ClassifyError) error
}

// Discard drops everything written to it.
type Discard struct{}

func (Discard) PutEventBatch(context.Context, []model.ActivityEvent) error   { return nil }
func (Discard) PutClassifyErrors(context.Context, []model.ClassifyError) error { return nil }
