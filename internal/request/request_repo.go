package request

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// FindByIDForUpdate takes a row lock so concurrent transitions on the
	// same request serialize; callers must hold a transaction.
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error

	FindByUser(ctx context.Context, userID string, status string) ([]LeaveRequest, error)
	FindByUsers(ctx context.Context, userIDs []string) ([]LeaveRequest, error)
	FindByIDs(ctx context.Context, ids []string) ([]LeaveRequest, error)

	// HasOverlapping checks closed-interval overlap against requests that
	// still hold or may hold days (everything except CANCELLED/REJECTED).
	HasOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID *string) (bool, error)

	CreateComment(ctx context.Context, c *RequestComment) error
	FindCommentsByRequest(ctx context.Context, requestID string) ([]RequestComment, error)
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

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) Update(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) FindByUser(ctx context.Context, userID string, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []LeaveRequest
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByUsers(ctx context.Context, userIDs []string) ([]LeaveRequest, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]LeaveRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) HasOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID *string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []string{StatusCancelled, StatusRejected}).
		Where("start_date <= ?", end).
		Where("end_date >= ?", start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateComment(ctx context.Context, c *RequestComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindCommentsByRequest(ctx context.Context, requestID string) ([]RequestComment, error) {
	var rows []RequestComment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
