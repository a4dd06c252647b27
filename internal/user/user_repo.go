package user

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindActiveByIDs(ctx context.Context, ids []string) ([]Profile, error)
	FindActiveManagerRelationships(ctx context.Context, userID string) ([]ManagerRelationship, error)
	FindActiveSubordinateRelationships(ctx context.Context, managerID string) ([]ManagerRelationship, error)
	CreateRelationship(ctx context.Context, rel *ManagerRelationship) error
	DeactivateRelationship(ctx context.Context, userID, managerID string) error
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

func (r *repository) FindByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var profiles []Profile
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) FindActiveManagerRelationships(ctx context.Context, userID string) ([]ManagerRelationship, error) {
	var rels []ManagerRelationship
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Order("level ASC, created_at ASC").
		Find(&rels).Error
	return rels, err
}

func (r *repository) FindActiveSubordinateRelationships(ctx context.Context, managerID string) ([]ManagerRelationship, error) {
	var rels []ManagerRelationship
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Where("is_active = ?", true).
		Find(&rels).Error
	return rels, err
}

func (r *repository) CreateRelationship(ctx context.Context, rel *ManagerRelationship) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *repository) DeactivateRelationship(ctx context.Context, userID, managerID string) error {
	return r.db.WithContext(ctx).
		Model(&ManagerRelationship{}).
		Where("user_id = ?", userID).
		Where("manager_id = ?", managerID).
		Update("is_active", false).Error
}
