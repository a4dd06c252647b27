package balance

import (
	"time"

	"github.com/google/uuid"
)

// UserBalance is one ledger row per (user, activity type, year). Rows are
// created lazily on first reference and never deleted, only zeroed.
type UserBalance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_balances_key"`
	ActivityTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_balances_key"`
	Year           int       `gorm:"type:int;not null;uniqueIndex:idx_user_balances_key"`

	TotalDays       float64 `gorm:"type:numeric(6,2);not null;default:0"`
	UsedDays        float64 `gorm:"type:numeric(6,2);not null;default:0"`
	PendingDays     float64 `gorm:"type:numeric(6,2);not null;default:0"`
	CarriedOverDays float64 `gorm:"type:numeric(6,2);not null;default:0"`
	AdjustmentDays  float64 `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserBalance) TableName() string {
	return "user_balances"
}

// AvailableDays is the only derived quantity the ledger exposes. Used and
// pending days are floor-clamped at zero by every mutation, so this can go
// negative only through adjustments or over-deduction on types that allow
// a negative balance.
func (b *UserBalance) AvailableDays() float64 {
	return b.TotalDays + b.CarriedOverDays + b.AdjustmentDays - b.UsedDays - b.PendingDays
}
