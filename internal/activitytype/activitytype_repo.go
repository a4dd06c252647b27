package activitytype

import (
	"context"

	"leaveflow/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=activitytype_repo.go -destination=mock/activitytype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, t *ActivityType) error
	FindByID(ctx context.Context, id string) (*ActivityType, error)
	FindActiveForCompany(ctx context.Context, companyID string) ([]ActivityType, error)
	Update(ctx context.Context, t *ActivityType) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, t *ActivityType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*ActivityType, error) {
	var t ActivityType
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindActiveForCompany returns the company's own types plus global ones.
func (r *repository) FindActiveForCompany(ctx context.Context, companyID string) ([]ActivityType, error) {
	var types []ActivityType
	err := r.db.WithContext(ctx).
		Scopes(tenant.SharedScope(companyID)).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) Update(ctx context.Context, t *ActivityType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ActivityType{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}
