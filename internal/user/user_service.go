package user

import (
	"context"
	"errors"

	usererrors "leaveflow/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock

// Directory is the narrow read contract the approval engine consumes.
type Directory interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetActiveManagers(ctx context.Context, userID string) ([]ManagerRelationship, error)
}

type Service interface {
	Directory

	GetProfile(ctx context.Context, id string) (ProfileResponse, error)
	GetManagers(ctx context.Context, userID string) ([]ManagerResponse, error)
	AssignManager(ctx context.Context, userID string, req AssignManagerRequest) error
	RemoveManager(ctx context.Context, userID, managerID string) error

	// GetSubordinateTree walks the reporting graph below managerID. The
	// relationship data is not guaranteed acyclic; a visited set silently
	// terminates any cyclic branch.
	GetSubordinateTree(ctx context.Context, managerID string) ([]Profile, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) GetByID(ctx context.Context, id string) (*Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *service) GetActiveManagers(ctx context.Context, userID string) ([]ManagerRelationship, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	return s.repo.FindActiveManagerRelationships(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, id string) (ProfileResponse, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return ProfileResponse{}, err
	}
	return mapToProfileResponse(*p), nil
}

func (s *service) GetManagers(ctx context.Context, userID string) ([]ManagerResponse, error) {
	rels, err := s.GetActiveManagers(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(rels))
	for i, rel := range rels {
		ids[i] = rel.ManagerID.String()
	}

	profiles, err := s.repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.FullName
	}

	resp := make([]ManagerResponse, 0, len(rels))
	for _, rel := range rels {
		resp = append(resp, ManagerResponse{
			ManagerID: rel.ManagerID.String(),
			FullName:  names[rel.ManagerID],
			Level:     rel.Level,
			IsPrimary: rel.IsPrimary,
		})
	}
	return resp, nil
}

func (s *service) AssignManager(ctx context.Context, userID string, req AssignManagerRequest) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return usererrors.ErrInvalidUserID
	}
	managerUUID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return usererrors.ErrInvalidManagerID
	}
	if userUUID == managerUUID {
		return usererrors.ErrSelfManagement
	}

	level := req.Level
	if level < 1 {
		level = 1
	}

	rel := &ManagerRelationship{
		ID:        uuid.New(),
		UserID:    userUUID,
		ManagerID: managerUUID,
		Level:     level,
		IsPrimary: req.IsPrimary,
		IsActive:  true,
	}

	if err := s.repo.CreateRelationship(ctx, rel); err != nil {
		s.logger.Error("assign manager failed",
			zap.String("user_id", userID),
			zap.String("manager_id", req.ManagerID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("manager assigned",
		zap.String("user_id", userID),
		zap.String("manager_id", req.ManagerID),
		zap.Int("level", level),
	)
	return nil
}

func (s *service) RemoveManager(ctx context.Context, userID, managerID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if _, err := uuid.Parse(managerID); err != nil {
		return usererrors.ErrInvalidManagerID
	}
	return s.repo.DeactivateRelationship(ctx, userID, managerID)
}

func (s *service) GetSubordinateTree(ctx context.Context, managerID string) ([]Profile, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	var result []Profile
	visited := make(map[string]bool)

	if err := s.collectSubordinates(ctx, managerID, visited, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) collectSubordinates(ctx context.Context, managerID string, visited map[string]bool, result *[]Profile) error {
	if visited[managerID] {
		return nil
	}
	visited[managerID] = true

	rels, err := s.repo.FindActiveSubordinateRelationships(ctx, managerID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		if id := rel.UserID.String(); !visited[id] {
			ids = append(ids, id)
		}
	}

	profiles, err := s.repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if visited[p.ID.String()] {
			continue
		}
		*result = append(*result, p)
		if err := s.collectSubordinates(ctx, p.ID.String(), visited, result); err != nil {
			return err
		}
	}
	return nil
}

func mapToProfileResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID.String(),
		CompanyID:     p.CompanyID.String(),
		FullName:      p.FullName,
		Email:         p.Email,
		ApprovalLogic: p.ApprovalLogic,
		IsActive:      p.IsActive,
	}
}
