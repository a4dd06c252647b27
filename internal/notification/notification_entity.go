package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one in-app message derived from a lifecycle or approval
// event. The unique index makes event delivery idempotent: replaying a
// Kafka message cannot produce a second row.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_notifications_delivery"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_delivery"`
	EventType   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_notifications_delivery"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Body        string    `gorm:"type:text;not null"`
	IsRead      bool      `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
