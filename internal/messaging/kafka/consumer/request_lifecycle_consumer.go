package consumer

import (
	"context"
	"encoding/json"

	"leaveflow/internal/events"
	"leaveflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeRequestLifecycle turns lifecycle events into in-app notifications
// for the requester. Malformed messages are committed and dropped;
// delivery failures leave the message uncommitted for redelivery.
func ConsumeRequestLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notifications notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_lifecycle")
	log.Info("request lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request lifecycle consumer stopped")
				return
			}
			log.Error("fetch lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.RequestLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notifications.RecordLifecycle(ctx, event); err != nil {
			log.Error("record lifecycle notification failed",
				zap.String("request_id", event.RequestID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("lifecycle notification recorded",
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
		)
	}
}
