package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leaveflow/internal/events"
	notificationerrors "leaveflow/internal/notification/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	// RecordLifecycle stores the requester-facing notification for one
	// lifecycle event. Redelivery of the same event is a no-op.
	RecordLifecycle(ctx context.Context, event events.RequestLifecycleEvent) error
	RecordApprovalTask(ctx context.Context, event events.ApprovalPendingEvent) error

	GetForUser(ctx context.Context, userID string, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) RecordLifecycle(ctx context.Context, event events.RequestLifecycleEvent) error {
	recipient, err := uuid.Parse(event.UserID)
	if err != nil {
		return notificationerrors.ErrInvalidRecipient
	}
	requestID, err := uuid.Parse(event.RequestID)
	if err != nil {
		return notificationerrors.ErrInvalidEvent
	}

	title, body := lifecycleMessage(event)
	return s.create(ctx, &Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		RequestID:   requestID,
		EventType:   event.EventType,
		Title:       title,
		Body:        body,
	})
}

func (s *service) RecordApprovalTask(ctx context.Context, event events.ApprovalPendingEvent) error {
	recipient, err := uuid.Parse(event.ApproverID)
	if err != nil {
		return notificationerrors.ErrInvalidRecipient
	}
	requestID, err := uuid.Parse(event.RequestID)
	if err != nil {
		return notificationerrors.ErrInvalidEvent
	}

	return s.create(ctx, &Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		RequestID:   requestID,
		EventType:   event.EventType,
		Title:       "Approval needed",
		Body:        fmt.Sprintf("Request %s is waiting for your decision.", event.RequestNumber),
	})
}

func (s *service) create(ctx context.Context, n *Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		if isDuplicateDelivery(err) {
			s.logger.Debug("duplicate notification delivery skipped",
				zap.String("recipient_id", n.RecipientID.String()),
				zap.String("request_id", n.RequestID.String()),
				zap.String("event_type", n.EventType),
			)
			return nil
		}
		return err
	}
	return nil
}

func lifecycleMessage(event events.RequestLifecycleEvent) (string, string) {
	switch event.EventType {
	case events.EventRequestSubmitted:
		return "Request submitted", fmt.Sprintf("Request %s was submitted for approval.", event.RequestNumber)
	case events.EventRequestApproved:
		return "Request approved", fmt.Sprintf("Request %s was approved.", event.RequestNumber)
	case events.EventRequestRejected:
		return "Request rejected", fmt.Sprintf("Request %s was rejected.", event.RequestNumber)
	case events.EventRequestCancelled:
		return "Request cancelled", fmt.Sprintf("Request %s was cancelled.", event.RequestNumber)
	case events.EventRequestRevisionRequested:
		return "Revision requested", fmt.Sprintf("Request %s needs changes: %s", event.RequestNumber, event.Comment)
	default:
		return "Request updated", fmt.Sprintf("Request %s changed to %s.", event.RequestNumber, event.Status)
	}
}

func isDuplicateDelivery(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_notifications_delivery"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_notifications_delivery")
}

func (s *service) GetForUser(ctx context.Context, userID string, unreadOnly bool) ([]NotificationResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, notificationerrors.ErrInvalidRecipient
	}

	rows, err := s.repo.FindByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		resp[i] = NotificationResponse{
			ID:        n.ID.String(),
			RequestID: n.RequestID.String(),
			EventType: n.EventType,
			Title:     n.Title,
			Body:      n.Body,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return notificationerrors.ErrInvalidRecipient
	}

	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notificationerrors.ErrNotificationNotFound
		}
		return err
	}
	return nil
}
