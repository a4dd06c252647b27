package consumer

import (
	"context"
	"encoding/json"

	"leaveflow/internal/events"
	"leaveflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeApprovalTasks(
	ctx context.Context,
	reader *kafkago.Reader,
	notifications notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.approval_task")
	log.Info("approval task consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval task consumer stopped")
				return
			}
			log.Error("fetch approval task message failed", zap.Error(err))
			continue
		}

		var event events.ApprovalPendingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode approval task event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notifications.RecordApprovalTask(ctx, event); err != nil {
			log.Error("record approval task notification failed",
				zap.String("request_id", event.RequestID),
				zap.String("approver_id", event.ApproverID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit approval task message failed", zap.Error(err))
			continue
		}

		log.Info("approval task notification recorded",
			zap.String("request_id", event.RequestID),
			zap.String("approver_id", event.ApproverID),
		)
	}
}
