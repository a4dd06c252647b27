package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a before/after image for every engine mutation. Rows are
// written inside the same transaction as the change they document, so the
// trail can never disagree with the persisted state.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity"`
	EntityID   string    `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity"`
	Action     string    `gorm:"type:varchar(50);not null"`
	OldValues  *string   `gorm:"type:jsonb"`
	NewValues  *string   `gorm:"type:jsonb"`
	ActorID    string    `gorm:"type:varchar(50)"`
	RequestID  string    `gorm:"type:varchar(50)"`
	CreatedAt  time.Time
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
