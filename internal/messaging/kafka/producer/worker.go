package producer

import (
	"context"
	"time"

	"leaveflow/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultBatchSize = 50

// Dispatcher drains the outbox table and publishes pending events. One
// instance runs per worker process; the claim protocol is last-writer-wins
// on status, which tolerates but does not prevent duplicate publishes.
// Consumers must treat messages as at-least-once.
type Dispatcher struct {
	repo         kafka.OutboxRepository
	writer       *kafkago.Writer
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewDispatcher(repo kafka.OutboxRepository, writer *kafkago.Writer, pollInterval time.Duration, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("kafka.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.dispatcher")
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Dispatcher{
		repo:         repo,
		writer:       writer,
		logger:       l,
		pollInterval: pollInterval,
		batchSize:    defaultBatchSize,
	}
}

// Run blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.logger.Info("outbox dispatcher started", zap.Duration("poll_interval", d.pollInterval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.drainOnce(ctx); err != nil {
				d.logger.Error("drain outbox failed", zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) drainOnce(ctx context.Context) error {
	events, err := d.repo.ListPending(ctx, d.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	d.logger.Debug("draining outbox", zap.Int("count", len(events)))

	for _, event := range events {
		if err := publishEvent(ctx, d.writer, event); err != nil {
			d.logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Error(err),
			)
			_ = d.repo.MarkFailed(ctx, event.ID, err.Error())
			continue
		}

		if err := d.repo.MarkSent(ctx, event.ID); err != nil {
			d.logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		d.logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return nil
}
