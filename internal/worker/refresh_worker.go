package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentdash/internal/amqp"
	applog "rentdash/internal/log"
)

// Invalidator drops cached dataset state
type Invalidator interface {
	Invalidate(ctx context.Context, reason string)
}

// RefreshConsumer delivers dataset refresh messages
type RefreshConsumer interface {
	ConsumeDatasetRefresh(ctx context.Context, handler func(context.Context, *amqp.DatasetRefreshMessage) error) error
	Reconnect() error
}

// RefreshWorker invalidates the dashboard caches when a source announces
// new content
type RefreshWorker struct {
	consumer     RefreshConsumer
	target       Invalidator
	retryBackoff time.Duration
}

func NewRefreshWorker(consumer RefreshConsumer, target Invalidator) *RefreshWorker {
	return &RefreshWorker{
		consumer:     consumer,
		target:       target,
		retryBackoff: 5 * time.Second,
	}
}

// HandleRefreshMessage processes a single refresh message
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.DatasetRefreshMessage) error {
	slog.InfoContext(ctx, "Processing dataset refresh",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldSource, msg.Source,
		applog.FieldRows, msg.Rows,
		"published_at", msg.Timestamp.Format(time.RFC3339))

	w.target.Invalidate(ctx, "refresh from "+msg.Source)
	return nil
}

// Run consumes until ctx is done, reconnecting after consumer failures
func (w *RefreshWorker) Run(ctx context.Context) error {
	for {
		err := w.consumer.ConsumeDatasetRefresh(ctx, w.HandleRefreshMessage)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}

		slog.WarnContext(ctx, "Refresh consumer stopped, reconnecting",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldError, err,
			"backoff", w.retryBackoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retryBackoff):
		}

		if err := w.consumer.Reconnect(); err != nil {
			slog.ErrorContext(ctx, "AMQP reconnect failed", applog.FieldComponent, applog.ComponentWorker, applog.FieldError, err)
		}
	}
}
