package request

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft             = "DRAFT"
	StatusPending           = "PENDING"
	StatusApproved          = "APPROVED"
	StatusRejected          = "REJECTED"
	StatusCancelled         = "CANCELLED"
	StatusRevisionRequested = "REVISION_REQUESTED"
)

const (
	CommentKindRevision = "REVISION"
	CommentKindDecision = "DECISION"
)

// LeaveRequest is the aggregate root of the lifecycle. TotalDays is fixed
// at creation; editing dates on a draft keeps the original figure.
type LeaveRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNumber  string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ActivityTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	TotalDays float64   `gorm:"type:numeric(6,2);not null"`
	Reason    string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	SubmittedAt *time.Time
	DecidedAt   *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// RequestComment keeps the revision and decision notes attached to a
// request, in creation order.
type RequestComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	Comment   string    `gorm:"type:text;not null"`

	CreatedAt time.Time
}

func (RequestComment) TableName() string {
	return "request_comments"
}
