package audit

import (
	"context"
	"encoding/json"

	"leaveflow/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_recorder.go -destination=mock/audit_recorder_mock.go -package=mock

// Recorder is the audit sink consumed by every mutating service. The tx
// argument scopes the write to the caller's transaction; passing the plain
// DB handle records outside any transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entityType, entityID, action string, oldValues, newValues any) error
}

type recorder struct {
	logger *zap.Logger
}

func NewRecorder(logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &recorder{logger: l}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, entityType, entityID, action string, oldValues, newValues any) error {
	entry := AuditLog{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OldValues:  marshalValues(r.logger, oldValues),
		NewValues:  marshalValues(r.logger, newValues),
		ActorID:    contextutil.GetUserID(ctx),
		RequestID:  contextutil.GetRequestID(ctx),
	}

	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}

	r.logger.Debug("audit recorded",
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
		zap.String("action", action),
	)
	return nil
}

func marshalValues(logger *zap.Logger, v any) *string {
	if v == nil {
		return nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn("marshal audit values failed", zap.Error(err))
		return nil
	}

	s := string(payload)
	return &s
}

// NopRecorder discards everything. Used in tests and in read paths that
// construct services without an audit trail.
type NopRecorder struct{}

func NewNopRecorder() Recorder {
	return NopRecorder{}
}

func (NopRecorder) Record(context.Context, *gorm.DB, string, string, string, any, any) error {
	return nil
}
