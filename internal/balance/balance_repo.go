package balance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, b *UserBalance) error
	Find(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error)
	// FindForUpdate takes a row lock; callers must hold a transaction.
	FindForUpdate(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error)
	FindAllForUserYear(ctx context.Context, userID string, year int) ([]UserBalance, error)
	Update(ctx context.Context, b *UserBalance) error
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

func (r *repository) Create(ctx context.Context, b *UserBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) Find(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error) {
	var b UserBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("activity_type_id = ?", activityTypeID).
		Where("year = ?", year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindForUpdate(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error) {
	var b UserBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Where("activity_type_id = ?", activityTypeID).
		Where("year = ?", year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindAllForUserYear(ctx context.Context, userID string, year int) ([]UserBalance, error) {
	var balances []UserBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("year = ?", year).
		Find(&balances).Error
	return balances, err
}

func (r *repository) Update(ctx context.Context, b *UserBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}
