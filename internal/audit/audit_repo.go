package audit

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByEntity(ctx context.Context, entityType, entityID string) ([]AuditLog, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEntity(ctx context.Context, entityType, entityID string) ([]AuditLog, error) {
	var logs []AuditLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
