package rbac

import (
	"sync"

	"leaveflow/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)

	ListRoles(companyID string) ([]RoleResponse, error)
	GetRole(id string) (*RoleResponse, error)
	CreateRole(companyID string, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(id string) error
	ListPermissions() ([]PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadCompanyPolicy(companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(companyID)
}

func (s *service) loadCompanyPolicyUnlocked(companyID string) error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.GetUserRoles(companyID)
	if err != nil {
		return err
	}

	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.RoleID, companyID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(companyID)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("policy loaded",
		zap.String("company_id", companyID),
		zap.Int("user_roles", len(userRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyUnlocked(req.CompanyID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	s.logger.Debug("enforce",
		zap.String("user_id", req.UserID),
		zap.String("company_id", req.CompanyID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListRoles(companyID string) ([]RoleResponse, error) {
	rows, err := s.repo.ListRoles(companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]RoleResponse, 0, len(rows))
	for _, row := range rows {
		role, err := s.toRoleResponse(&row)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *role)
	}
	return resp, nil
}

func (s *service) GetRole(id string) (*RoleResponse, error) {
	row, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}
	return s.toRoleResponse(row)
}

func (s *service) CreateRole(companyID string, req CreateRoleRequest) (*RoleResponse, error) {
	role := &RoleRow{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(role); err != nil {
		return nil, err
	}
	if len(req.Permissions) > 0 {
		if err := s.repo.UpdateRolePermissions(role.ID, req.Permissions); err != nil {
			return nil, err
		}
	}
	return s.toRoleResponse(role)
}

func (s *service) UpdateRole(id string, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if err := s.repo.UpdateRole(role); err != nil {
		return nil, err
	}

	if req.Permissions != nil {
		if err := s.repo.UpdateRolePermissions(role.ID, req.Permissions); err != nil {
			return nil, err
		}
	}
	return s.toRoleResponse(role)
}

func (s *service) DeleteRole(id string) error {
	return s.repo.DeleteRole(id)
}

func (s *service) ListPermissions() ([]PermissionResponse, error) {
	rows, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	resp := make([]PermissionResponse, len(rows))
	for i, row := range rows {
		resp[i] = PermissionResponse{
			ID:       row.ID,
			Resource: row.Resource,
			Action:   row.Action,
			Label:    row.Label,
			Category: row.Category,
		}
	}
	return resp, nil
}

func (s *service) toRoleResponse(row *RoleRow) (*RoleResponse, error) {
	perms, err := s.repo.GetPermissionsByRoleID(row.ID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Resource + ":" + p.Action
	}
	return &RoleResponse{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Permissions: names,
	}, nil
}
