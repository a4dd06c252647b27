package holiday

import (
	"context"
	"time"

	"leaveflow/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	FindActiveInRange(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// FindActiveInRange returns company-specific and global holidays whose date
// falls in [from, to].
func (r *repository) FindActiveInRange(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.SharedScope(companyID)).
		Where("is_active = ?", true).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Holiday{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
