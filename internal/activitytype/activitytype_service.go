package activitytype

import (
	"context"
	"errors"

	activitytypeerrors "leaveflow/internal/activitytype/errors"
	"leaveflow/internal/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=activitytype_service.go -destination=mock/activitytype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateActivityTypeRequest) (ActivityTypeResponse, error)
	GetByID(ctx context.Context, id string) (ActivityTypeResponse, error)
	GetActiveForCompany(ctx context.Context, companyID string) ([]ActivityTypeResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateActivityTypeRequest) (ActivityTypeResponse, error)

	// Snapshot is the read the engine uses: the raw policy row, not a DTO.
	Snapshot(ctx context.Context, id string) (*ActivityType, error)
}

type service struct {
	db      *gorm.DB
	repo    Repository
	auditor audit.Recorder
	logger  *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, auditor audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("activitytype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activitytype.service")
	}
	return &service{db: db, repo: repo, auditor: auditor, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateActivityTypeRequest) (ActivityTypeResponse, error) {
	s.logger.Debug("create activity type requested",
		zap.String("actor_id", actorID),
		zap.String("code", req.Code),
	)

	var companyID *uuid.UUID
	if req.CompanyID != nil && *req.CompanyID != "" {
		id, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return ActivityTypeResponse{}, activitytypeerrors.ErrInvalidCompanyID
		}
		companyID = &id
	}

	t := &ActivityType{
		ID:                        uuid.New(),
		CompanyID:                 companyID,
		Name:                      req.Name,
		Code:                      req.Code,
		IsActive:                  true,
		RequiresApproval:          boolOrDefault(req.RequiresApproval, true),
		ApprovalWorkflow:          req.ApprovalWorkflow,
		MaxApprovalLevels:         req.MaxApprovalLevels,
		DeductsFromBalance:        boolOrDefault(req.DeductsFromBalance, true),
		DefaultAnnualBalance:      req.DefaultAnnualBalance,
		AllowNegativeBalance:      req.AllowNegativeBalance,
		AllowCarryOver:            req.AllowCarryOver,
		MaxCarryOverDays:          req.MaxCarryOverDays,
		TimeTrackingMode:          stringOrDefault(req.TimeTrackingMode, TimeTrackingFullDay),
		AllowOverlapping:          req.AllowOverlapping,
		AllowCancellation:         boolOrDefault(req.AllowCancellation, true),
		CancellationDeadlineHours: req.CancellationDeadlineHours,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		exists, err := qtx.CodeExists(ctx, req.Code)
		if err != nil {
			return err
		}
		if exists {
			return activitytypeerrors.ErrDuplicateCode
		}

		if err := qtx.Create(ctx, t); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "ActivityType", t.ID.String(), "Created", nil, t)
	})
	if err != nil {
		s.logger.Warn("create activity type failed", zap.String("code", req.Code), zap.Error(err))
		return ActivityTypeResponse{}, err
	}

	s.logger.Info("activity type created",
		zap.String("activity_type_id", t.ID.String()),
		zap.String("code", t.Code),
	)
	return mapToResponse(*t), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ActivityTypeResponse, error) {
	t, err := s.Snapshot(ctx, id)
	if err != nil {
		return ActivityTypeResponse{}, err
	}
	return mapToResponse(*t), nil
}

func (s *service) GetActiveForCompany(ctx context.Context, companyID string) ([]ActivityTypeResponse, error) {
	types, err := s.repo.FindActiveForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]ActivityTypeResponse, len(types))
	for i, t := range types {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateActivityTypeRequest) (ActivityTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ActivityTypeResponse{}, activitytypeerrors.ErrInvalidActivityTypeID
	}

	var updated ActivityType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		t, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return activitytypeerrors.ErrActivityTypeNotFound
			}
			return err
		}
		old := *t

		t.Name = req.Name
		if req.IsActive != nil {
			t.IsActive = *req.IsActive
		}
		t.RequiresApproval = boolOrDefault(req.RequiresApproval, t.RequiresApproval)
		t.ApprovalWorkflow = req.ApprovalWorkflow
		t.MaxApprovalLevels = req.MaxApprovalLevels
		t.DeductsFromBalance = boolOrDefault(req.DeductsFromBalance, t.DeductsFromBalance)
		t.DefaultAnnualBalance = req.DefaultAnnualBalance
		t.AllowNegativeBalance = req.AllowNegativeBalance
		t.AllowCarryOver = req.AllowCarryOver
		t.MaxCarryOverDays = req.MaxCarryOverDays
		t.TimeTrackingMode = stringOrDefault(req.TimeTrackingMode, t.TimeTrackingMode)
		t.AllowOverlapping = req.AllowOverlapping
		t.AllowCancellation = boolOrDefault(req.AllowCancellation, t.AllowCancellation)
		t.CancellationDeadlineHours = req.CancellationDeadlineHours

		if err := qtx.Update(ctx, t); err != nil {
			return err
		}

		if err := s.auditor.Record(ctx, tx, "ActivityType", t.ID.String(), "Updated", old, t); err != nil {
			return err
		}

		updated = *t
		return nil
	})
	if err != nil {
		s.logger.Warn("update activity type failed", zap.String("activity_type_id", id), zap.Error(err))
		return ActivityTypeResponse{}, err
	}

	s.logger.Info("activity type updated", zap.String("activity_type_id", id))
	return mapToResponse(updated), nil
}

func (s *service) Snapshot(ctx context.Context, id string) (*ActivityType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, activitytypeerrors.ErrInvalidActivityTypeID
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, activitytypeerrors.ErrActivityTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func mapToResponse(t ActivityType) ActivityTypeResponse {
	resp := ActivityTypeResponse{
		ID:                        t.ID.String(),
		Name:                      t.Name,
		Code:                      t.Code,
		IsActive:                  t.IsActive,
		RequiresApproval:          t.RequiresApproval,
		ApprovalWorkflow:          t.ApprovalWorkflow,
		MaxApprovalLevels:         t.MaxApprovalLevels,
		DeductsFromBalance:        t.DeductsFromBalance,
		DefaultAnnualBalance:      t.DefaultAnnualBalance,
		AllowNegativeBalance:      t.AllowNegativeBalance,
		AllowCarryOver:            t.AllowCarryOver,
		MaxCarryOverDays:          t.MaxCarryOverDays,
		TimeTrackingMode:          t.TimeTrackingMode,
		AllowOverlapping:          t.AllowOverlapping,
		AllowCancellation:         t.AllowCancellation,
		CancellationDeadlineHours: t.CancellationDeadlineHours,
	}
	if t.CompanyID != nil {
		v := t.CompanyID.String()
		resp.CompanyID = &v
	}
	return resp
}
