package holiday

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holiday marks one non-working calendar date, either globally (nil
// CompanyID) or for a single company.
type Holiday struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	Name      string     `gorm:"type:varchar(100);not null"`
	Date      time.Time  `gorm:"type:date;not null;index"`
	IsActive  bool       `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Holiday) TableName() string {
	return "holidays"
}
