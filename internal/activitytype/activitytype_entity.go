package activitytype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WorkflowAutoApprove = "AUTO_APPROVE"
	WorkflowSingleLevel = "SINGLE_LEVEL"
	WorkflowMultiLevel  = "MULTI_LEVEL"
	WorkflowSkipLevel   = "SKIP_LEVEL"

	TimeTrackingFullDay = "FULL_DAY"
	TimeTrackingHalfDay = "HALF_DAY"
)

// ActivityType is the policy configuration for one leave category. The
// engine only ever reads it; rows are created and edited by administrators.
type ActivityType struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"` // nil = global type
	Name      string     `gorm:"type:varchar(100);not null"`
	Code      string     `gorm:"type:varchar(30);not null;uniqueIndex:idx_activity_types_code"`
	IsActive  bool       `gorm:"not null;default:true"`

	// Approval settings
	RequiresApproval  bool   `gorm:"not null;default:true"`
	ApprovalWorkflow  string `gorm:"type:varchar(20);not null;default:'SINGLE_LEVEL'"`
	MaxApprovalLevels *int   `gorm:"type:int"`

	// Balance settings
	DeductsFromBalance   bool     `gorm:"not null;default:true"`
	DefaultAnnualBalance *float64 `gorm:"type:numeric(6,2)"`
	AllowNegativeBalance bool     `gorm:"not null;default:false"`
	AllowCarryOver       bool     `gorm:"not null;default:false"`
	MaxCarryOverDays     *float64 `gorm:"type:numeric(6,2)"`

	// Request settings
	TimeTrackingMode          string `gorm:"type:varchar(20);not null;default:'FULL_DAY'"`
	AllowOverlapping          bool   `gorm:"not null;default:false"`
	AllowCancellation         bool   `gorm:"not null;default:true"`
	CancellationDeadlineHours *int   `gorm:"type:int"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ActivityType) TableName() string {
	return "activity_types"
}

// DefaultBalance returns the annual allowance, treating an unset value as
// zero the way the balance ledger expects.
func (a *ActivityType) DefaultBalance() float64 {
	if a.DefaultAnnualBalance == nil {
		return 0
	}
	return *a.DefaultAnnualBalance
}
