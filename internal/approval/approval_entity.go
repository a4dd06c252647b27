package approval

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusSkipped  = "SKIPPED"
)

// RequestApproval is one slot in a request's approval chain. Level mirrors
// the approver's hierarchy depth, Sequence is the global position inside
// the chain. IsRequired slots must be decided for ALL_MANAGERS completion;
// optional slots may stay PENDING or be marked SKIPPED.
type RequestApproval struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index:idx_request_approvals_request"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index:idx_request_approvals_approver"`
	Level      int       `gorm:"type:int;not null"`
	Sequence   int       `gorm:"type:int;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	IsRequired bool      `gorm:"not null;default:false"`
	Comment    *string   `gorm:"type:text"`
	DecidedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RequestApproval) TableName() string {
	return "request_approvals"
}

// ProxyAssignment delegates an approver's pending decisions to another
// user for a closed date window.
type ProxyAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApproverID  uuid.UUID `gorm:"type:uuid;not null;index:idx_proxy_assignments_approver"`
	ProxyUserID uuid.UUID `gorm:"type:uuid;not null;index:idx_proxy_assignments_proxy"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	IsActive    bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProxyAssignment) TableName() string {
	return "proxy_assignments"
}

// Covers reports whether the assignment window contains the given instant.
// Both endpoints are inclusive.
func (p *ProxyAssignment) Covers(asOf time.Time) bool {
	return !asOf.Before(p.StartDate) && !asOf.After(p.EndDate)
}
