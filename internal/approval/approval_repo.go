package approval

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateAll(ctx context.Context, rows []RequestApproval) error
	DeleteByRequest(ctx context.Context, requestID string) error
	FindByRequest(ctx context.Context, requestID string) ([]RequestApproval, error)
	FindByID(ctx context.Context, id string) (*RequestApproval, error)
	Update(ctx context.Context, row *RequestApproval) error
	FindPendingByApprovers(ctx context.Context, approverIDs []string) ([]RequestApproval, error)

	CreateProxy(ctx context.Context, p *ProxyAssignment) error
	// FindActiveProxies returns active assignments covering asOf, newest first.
	FindActiveProxies(ctx context.Context, approverID string, asOf time.Time) ([]ProxyAssignment, error)
	FindProxiedApprovers(ctx context.Context, proxyUserID string, asOf time.Time) ([]ProxyAssignment, error)
	DeactivateProxy(ctx context.Context, id string) error
	FindProxiesByApprover(ctx context.Context, approverID string) ([]ProxyAssignment, error)
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

func (r *repository) CreateAll(ctx context.Context, rows []RequestApproval) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) DeleteByRequest(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&RequestApproval{}).Error
}

func (r *repository) FindByRequest(ctx context.Context, requestID string) ([]RequestApproval, error) {
	var rows []RequestApproval
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("level ASC, sequence ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*RequestApproval, error) {
	var row RequestApproval
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Update(ctx context.Context, row *RequestApproval) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *repository) FindPendingByApprovers(ctx context.Context, approverIDs []string) ([]RequestApproval, error) {
	if len(approverIDs) == 0 {
		return nil, nil
	}
	var rows []RequestApproval
	err := r.db.WithContext(ctx).
		Where("approver_id IN ?", approverIDs).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateProxy(ctx context.Context, p *ProxyAssignment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindActiveProxies(ctx context.Context, approverID string, asOf time.Time) ([]ProxyAssignment, error) {
	var rows []ProxyAssignment
	err := r.db.WithContext(ctx).
		Where("approver_id = ?", approverID).
		Where("is_active = ?", true).
		Where("start_date <= ?", asOf).
		Where("end_date >= ?", asOf).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindProxiedApprovers(ctx context.Context, proxyUserID string, asOf time.Time) ([]ProxyAssignment, error) {
	var rows []ProxyAssignment
	err := r.db.WithContext(ctx).
		Where("proxy_user_id = ?", proxyUserID).
		Where("is_active = ?", true).
		Where("start_date <= ?", asOf).
		Where("end_date >= ?", asOf).
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeactivateProxy(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&ProxyAssignment{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) FindProxiesByApprover(ctx context.Context, approverID string) ([]ProxyAssignment, error) {
	var rows []ProxyAssignment
	err := r.db.WithContext(ctx).
		Where("approver_id = ?", approverID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
