package approval

import (
	"context"
	"sort"
	"time"

	"leaveflow/internal/activitytype"
	approvalerrors "leaveflow/internal/approval/errors"
	"leaveflow/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock

// Engine is the chain-building and completion logic consumed by the
// request lifecycle. All methods are side-effect free except GenerateChain
// and RecordDecision; WithTx binds those writes to the caller's
// transaction.
type Engine interface {
	WithTx(tx *gorm.DB) Engine

	// GenerateChain builds and persists the approval chain for a request.
	// Proxies are resolved once, at generation time; a later proxy change
	// does not rewrite an existing chain.
	GenerateChain(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]RequestApproval, error)

	// ClearChain removes a stale chain before a revised request is
	// resubmitted.
	ClearChain(ctx context.Context, requestID string) error

	IsComplete(ctx context.Context, requestID, approvalLogic string) (bool, error)
	NextPendingApproval(ctx context.Context, requestID string) (*RequestApproval, error)

	// ResolveApprover maps an approver to their active proxy, or back to
	// themselves when no assignment covers asOf.
	ResolveApprover(ctx context.Context, approverID string, asOf time.Time) (uuid.UUID, error)

	// CanApprove returns the pending chain slot the user may decide,
	// either as the named approver or as an active proxy for one.
	CanApprove(ctx context.Context, requestID, userID string, asOf time.Time) (*RequestApproval, error)

	RecordDecision(ctx context.Context, row *RequestApproval, status string, comment *string) error
}

type Service interface {
	Engine

	// PendingSlotsFor lists the chain slots the user may currently decide,
	// directly or through active proxy assignments.
	PendingSlotsFor(ctx context.Context, userID string, asOf time.Time) ([]RequestApproval, error)

	GetChain(ctx context.Context, requestID string) ([]ApprovalResponse, error)
	CreateProxy(ctx context.Context, approverID string, req CreateProxyRequest) (ProxyResponse, error)
	DeactivateProxy(ctx context.Context, approverID, proxyID string) error
	GetProxies(ctx context.Context, approverID string) ([]ProxyResponse, error)
}

type service struct {
	repo   Repository
	users  user.Directory
	logger *zap.Logger
}

func NewService(repo Repository, users user.Directory, logger ...*zap.Logger) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{repo: repo, users: users, logger: l}
}

func (s *service) WithTx(tx *gorm.DB) Engine {
	return &service{repo: s.repo.WithTx(tx), users: s.users, logger: s.logger}
}

type candidate struct {
	approverID uuid.UUID
	level      int
}

func (s *service) GenerateChain(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]RequestApproval, error) {
	if !policy.RequiresApproval || policy.ApprovalWorkflow == activitytype.WorkflowAutoApprove {
		return nil, nil
	}

	profile, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	rels, err := s.users.GetActiveManagers(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(rels))
	for _, rel := range rels {
		approverID, err := s.ResolveApprover(ctx, rel.ManagerID.String(), asOf)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{approverID: approverID, level: rel.Level})
	}

	required := profile.ApprovalLogic == user.ApprovalLogicAllManagers

	var rows []RequestApproval
	switch policy.ApprovalWorkflow {
	case activitytype.WorkflowSingleLevel:
		rows = buildSingleLevel(requestID, candidates, required)
	case activitytype.WorkflowMultiLevel:
		rows = buildMultiLevel(requestID, candidates, required, policy.MaxApprovalLevels)
	case activitytype.WorkflowSkipLevel:
		rows = buildSkipLevel(requestID, candidates, required)
	default:
		rows = buildSingleLevel(requestID, candidates, required)
	}

	if len(rows) == 0 {
		s.logger.Warn("chain generation found no approvers",
			zap.String("request_id", requestID.String()),
			zap.String("requester_id", requesterID),
			zap.String("workflow", policy.ApprovalWorkflow),
		)
		return nil, approvalerrors.ErrNoApproversConfigured
	}

	if err := s.repo.CreateAll(ctx, rows); err != nil {
		return nil, err
	}

	s.logger.Info("approval chain generated",
		zap.String("request_id", requestID.String()),
		zap.String("workflow", policy.ApprovalWorkflow),
		zap.Int("slots", len(rows)),
	)
	return rows, nil
}

func buildSingleLevel(requestID uuid.UUID, candidates []candidate, required bool) []RequestApproval {
	var level1 []candidate
	for _, c := range candidates {
		if c.level == 1 {
			level1 = append(level1, c)
		}
	}

	// No direct manager on record: fall back to the closest approver we
	// have and make the slot mandatory.
	if len(level1) == 0 {
		if len(candidates) == 0 {
			return nil
		}
		return []RequestApproval{newSlot(requestID, candidates[0].approverID, 1, 1, true)}
	}

	rows := make([]RequestApproval, len(level1))
	for i, c := range level1 {
		rows[i] = newSlot(requestID, c.approverID, 1, i+1, required)
	}
	return rows
}

func buildMultiLevel(requestID uuid.UUID, candidates []candidate, required bool, maxLevels *int) []RequestApproval {
	grouped := make(map[int][]candidate)
	for _, c := range candidates {
		grouped[c.level] = append(grouped[c.level], c)
	}

	levels := make([]int, 0, len(grouped))
	for level := range grouped {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	if maxLevels != nil && *maxLevels > 0 && len(levels) > *maxLevels {
		levels = levels[:*maxLevels]
	}

	var rows []RequestApproval
	sequence := 0
	for _, level := range levels {
		for _, c := range grouped[level] {
			sequence++
			rows = append(rows, newSlot(requestID, c.approverID, level, sequence, required))
		}
	}
	return rows
}

func buildSkipLevel(requestID uuid.UUID, candidates []candidate, required bool) []RequestApproval {
	var picked []candidate
	for _, c := range candidates {
		if c.level > 1 {
			picked = append(picked, c)
		}
	}
	if len(picked) == 0 {
		picked = candidates
	}

	rows := make([]RequestApproval, len(picked))
	for i, c := range picked {
		rows[i] = newSlot(requestID, c.approverID, 1, i+1, required)
	}
	return rows
}

func newSlot(requestID, approverID uuid.UUID, level, sequence int, required bool) RequestApproval {
	return RequestApproval{
		ID:         uuid.New(),
		RequestID:  requestID,
		ApproverID: approverID,
		Level:      level,
		Sequence:   sequence,
		Status:     StatusPending,
		IsRequired: required,
	}
}

// IsComplete decides whether the chain has fully signed off. An empty
// chain counts as complete so auto-approved requests short-circuit. A
// single rejection anywhere makes the chain permanently incomplete.
func (s *service) IsComplete(ctx context.Context, requestID, approvalLogic string) (bool, error) {
	rows, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return true, nil
	}

	for _, row := range rows {
		if row.Status == StatusRejected {
			return false, nil
		}
	}

	if approvalLogic == user.ApprovalLogicAllManagers {
		for _, row := range rows {
			if row.Status != StatusApproved && row.Status != StatusSkipped {
				return false, nil
			}
		}
		return true, nil
	}

	// ANY_MANAGER: one approval per distinct level.
	approvedLevels := make(map[int]bool)
	allLevels := make(map[int]bool)
	for _, row := range rows {
		allLevels[row.Level] = true
		if row.Status == StatusApproved {
			approvedLevels[row.Level] = true
		}
	}
	for level := range allLevels {
		if !approvedLevels[level] {
			return false, nil
		}
	}
	return true, nil
}

func (s *service) NextPendingApproval(ctx context.Context, requestID string) (*RequestApproval, error) {
	rows, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Status == StatusPending {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (s *service) ResolveApprover(ctx context.Context, approverID string, asOf time.Time) (uuid.UUID, error) {
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return uuid.Nil, approvalerrors.ErrInvalidApproverID
	}

	proxies, err := s.repo.FindActiveProxies(ctx, approverID, asOf)
	if err != nil {
		return uuid.Nil, err
	}
	if len(proxies) == 0 {
		return approverUUID, nil
	}

	// Overlapping windows resolve to the most recently created assignment.
	return proxies[0].ProxyUserID, nil
}

func (s *service) CanApprove(ctx context.Context, requestID, userID string, asOf time.Time) (*RequestApproval, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, approvalerrors.ErrInvalidApproverID
	}

	rows, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var proxied map[uuid.UUID]bool
	for i := range rows {
		row := &rows[i]
		if row.Status != StatusPending {
			continue
		}
		if row.ApproverID == userUUID {
			return row, nil
		}

		if proxied == nil {
			assignments, err := s.repo.FindProxiedApprovers(ctx, userID, asOf)
			if err != nil {
				return nil, err
			}
			proxied = make(map[uuid.UUID]bool, len(assignments))
			for _, a := range assignments {
				proxied[a.ApproverID] = true
			}
		}
		if proxied[row.ApproverID] {
			return row, nil
		}
	}

	return nil, approvalerrors.ErrNotAuthorizedApprover
}

func (s *service) RecordDecision(ctx context.Context, row *RequestApproval, status string, comment *string) error {
	now := time.Now()
	row.Status = status
	row.Comment = comment
	row.DecidedAt = &now
	return s.repo.Update(ctx, row)
}

func (s *service) ClearChain(ctx context.Context, requestID string) error {
	return s.repo.DeleteByRequest(ctx, requestID)
}

func (s *service) PendingSlotsFor(ctx context.Context, userID string, asOf time.Time) ([]RequestApproval, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, approvalerrors.ErrInvalidApproverID
	}

	approverIDs := []string{userID}
	assignments, err := s.repo.FindProxiedApprovers(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		approverIDs = append(approverIDs, a.ApproverID.String())
	}

	return s.repo.FindPendingByApprovers(ctx, approverIDs)
}

func (s *service) GetChain(ctx context.Context, requestID string) ([]ApprovalResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, approvalerrors.ErrApprovalNotFound
	}

	rows, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	resp := make([]ApprovalResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToApprovalResponse(row)
	}
	return resp, nil
}

func (s *service) CreateProxy(ctx context.Context, approverID string, req CreateProxyRequest) (ProxyResponse, error) {
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return ProxyResponse{}, approvalerrors.ErrInvalidApproverID
	}
	proxyUUID, err := uuid.Parse(req.ProxyUserID)
	if err != nil {
		return ProxyResponse{}, approvalerrors.ErrInvalidApproverID
	}
	if approverUUID == proxyUUID {
		return ProxyResponse{}, approvalerrors.ErrSelfProxy
	}

	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return ProxyResponse{}, approvalerrors.ErrInvalidProxyWindow
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return ProxyResponse{}, approvalerrors.ErrInvalidProxyWindow
	}
	if end.Before(start) {
		return ProxyResponse{}, approvalerrors.ErrInvalidProxyWindow
	}

	if _, err := s.users.GetByID(ctx, req.ProxyUserID); err != nil {
		return ProxyResponse{}, err
	}

	assignment := &ProxyAssignment{
		ID:          uuid.New(),
		ApproverID:  approverUUID,
		ProxyUserID: proxyUUID,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
	}

	if err := s.repo.CreateProxy(ctx, assignment); err != nil {
		return ProxyResponse{}, err
	}

	s.logger.Info("proxy assignment created",
		zap.String("approver_id", approverID),
		zap.String("proxy_user_id", req.ProxyUserID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)
	return mapToProxyResponse(*assignment), nil
}

func (s *service) DeactivateProxy(ctx context.Context, approverID, proxyID string) error {
	assignments, err := s.repo.FindProxiesByApprover(ctx, approverID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.ID.String() == proxyID {
			return s.repo.DeactivateProxy(ctx, proxyID)
		}
	}
	return approvalerrors.ErrApprovalNotFound
}

func (s *service) GetProxies(ctx context.Context, approverID string) ([]ProxyResponse, error) {
	if _, err := uuid.Parse(approverID); err != nil {
		return nil, approvalerrors.ErrInvalidApproverID
	}

	assignments, err := s.repo.FindProxiesByApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}

	resp := make([]ProxyResponse, len(assignments))
	for i, a := range assignments {
		resp[i] = mapToProxyResponse(a)
	}
	return resp, nil
}
