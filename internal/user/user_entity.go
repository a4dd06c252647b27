package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// ApprovalLogic dictates how much of the approval chain must sign off:
	// ANY_MANAGER needs one approval per hierarchy level, ALL_MANAGERS
	// needs every approver.
	ApprovalLogicAnyManager  = "ANY_MANAGER"
	ApprovalLogicAllManagers = "ALL_MANAGERS"
)

type Profile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName      string    `gorm:"type:varchar(150);not null"`
	Email         string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	ApprovalLogic string    `gorm:"type:varchar(20);not null;default:'ANY_MANAGER'"`
	IsActive      bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

// ManagerRelationship is one edge of the reporting graph. Level encodes
// hierarchy depth relative to the subordinate (1 = direct manager). The
// data is not guaranteed acyclic, so traversals must carry a visited set.
type ManagerRelationship struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_relationships_user"`
	ManagerID uuid.UUID `gorm:"type:uuid;not null;index:idx_manager_relationships_manager"`
	Level     int       `gorm:"type:int;not null;default:1"`
	IsPrimary bool      `gorm:"not null;default:false"`
	IsActive  bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ManagerRelationship) TableName() string {
	return "manager_relationships"
}
