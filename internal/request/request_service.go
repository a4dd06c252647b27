package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leaveflow/internal/activitytype"
	"leaveflow/internal/approval"
	"leaveflow/internal/audit"
	"leaveflow/internal/balance"
	"leaveflow/internal/events"
	"leaveflow/internal/holiday"
	"leaveflow/internal/messaging/kafka"
	requesterrors "leaveflow/internal/request/errors"
	"leaveflow/internal/shared/contextutil"
	"leaveflow/internal/shared/counter"
	"leaveflow/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestCounterType = "leave_request"

// PolicyReader is the slice of the activity type service the lifecycle
// needs.
type PolicyReader interface {
	Snapshot(ctx context.Context, id string) (*activitytype.ActivityType, error)
}

// DirectoryReader is the slice of the user service the lifecycle needs.
type DirectoryReader interface {
	GetByID(ctx context.Context, id string) (*user.Profile, error)
	GetSubordinateTree(ctx context.Context, managerID string) ([]user.Profile, error)
}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, userID string, req CreateRequestRequest) (RequestResponse, error)
	Update(ctx context.Context, userID, id string, req UpdateRequestRequest) (RequestResponse, error)
	Submit(ctx context.Context, userID, id string) (RequestResponse, error)
	Approve(ctx context.Context, approverID, id string, comment *string) (RequestResponse, error)
	Reject(ctx context.Context, approverID, id string, comment *string) (RequestResponse, error)
	Cancel(ctx context.Context, userID, id string) (RequestResponse, error)
	RequestRevision(ctx context.Context, approverID, id, comment string) (RequestResponse, error)

	GetByID(ctx context.Context, id string) (RequestResponse, error)
	GetComments(ctx context.Context, id string) ([]CommentResponse, error)
	GetUserRequests(ctx context.Context, userID, status string) ([]RequestResponse, error)
	GetTeamRequests(ctx context.Context, managerID string) ([]RequestResponse, error)
	GetPendingApprovals(ctx context.Context, approverID string) ([]RequestResponse, error)

	CalculateDays(ctx context.Context, companyID, activityTypeID, startDate, endDate string) (float64, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	balances  balance.Service
	approvals approval.Service
	policies  PolicyReader
	calendar  holiday.Calendar
	users     DirectoryReader
	counters  counter.Repository
	outbox    kafka.OutboxRepository
	auditor   audit.Recorder
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	balances balance.Service,
	approvals approval.Service,
	policies PolicyReader,
	calendar holiday.Calendar,
	users DirectoryReader,
	counters counter.Repository,
	outbox kafka.OutboxRepository,
	auditor audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		balances:  balances,
		approvals: approvals,
		policies:  policies,
		calendar:  calendar,
		users:     users,
		counters:  counters,
		outbox:    outbox,
		auditor:   auditor,
		logger:    l,
	}
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateRange
	}
	end, err := time.Parse(time.DateOnly, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateRange
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func (s *service) activePolicy(ctx context.Context, activityTypeID string) (*activitytype.ActivityType, error) {
	policy, err := s.policies.Snapshot(ctx, activityTypeID)
	if err != nil {
		return nil, err
	}
	if !policy.IsActive {
		return nil, requesterrors.ErrInactiveActivityType
	}
	return policy, nil
}

func (s *service) calculateDays(ctx context.Context, companyID string, policy *activitytype.ActivityType, start, end time.Time) (float64, error) {
	if policy.TimeTrackingMode == activitytype.TimeTrackingHalfDay {
		return 0.5, nil
	}

	holidays, err := s.calendar.ActiveDatesInRange(ctx, companyID, start, end)
	if err != nil {
		return 0, err
	}

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays[d] {
			continue
		}
		days++
	}
	return days, nil
}

func (s *service) CalculateDays(ctx context.Context, companyID, activityTypeID, startDate, endDate string) (float64, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return 0, err
	}
	policy, err := s.activePolicy(ctx, activityTypeID)
	if err != nil {
		return 0, err
	}
	return s.calculateDays(ctx, companyID, policy, start, end)
}

func (s *service) Create(ctx context.Context, companyID, userID string, req CreateRequestRequest) (RequestResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	policy, err := s.activePolicy(ctx, req.ActivityTypeID)
	if err != nil {
		return RequestResponse{}, err
	}

	days, err := s.calculateDays(ctx, companyID, policy, start, end)
	if err != nil {
		return RequestResponse{}, err
	}

	if policy.DeductsFromBalance && !policy.AllowNegativeBalance {
		ok, err := s.balances.HasSufficientBalance(ctx, userID, req.ActivityTypeID, start.Year(), days)
		if err != nil {
			return RequestResponse{}, err
		}
		if !ok {
			return RequestResponse{}, requesterrors.ErrInsufficientBalance
		}
	}

	if !policy.AllowOverlapping {
		overlap, err := s.repo.HasOverlapping(ctx, userID, start, end, nil)
		if err != nil {
			return RequestResponse{}, err
		}
		if overlap {
			return RequestResponse{}, requesterrors.ErrOverlappingRequest
		}
	}

	var created *LeaveRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.counters.NextValue(ctx, companyID, requestCounterType)
		if err != nil {
			return err
		}

		created = &LeaveRequest{
			ID:             uuid.New(),
			RequestNumber:  fmt.Sprintf("LR-%d-%06d", time.Now().Year(), seq),
			CompanyID:      companyUUID,
			UserID:         userUUID,
			ActivityTypeID: policy.ID,
			StartDate:      start,
			EndDate:        end,
			TotalDays:      days,
			Reason:         req.Reason,
			Status:         StatusDraft,
		}

		if err := s.repo.WithTx(tx).Create(ctx, created); err != nil {
			return err
		}
		return s.auditor.Record(ctx, tx, "LeaveRequest", created.ID.String(), "Created", nil, created)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.logger.Info("request created",
		zap.String("request_id", created.ID.String()),
		zap.String("request_number", created.RequestNumber),
		zap.String("user_id", userID),
		zap.Float64("total_days", days),
	)
	return mapToResponse(*created), nil
}

// Update edits a draft's period and reason. TotalDays keeps the figure
// computed at creation; the overlap guard still runs against the new
// period.
func (s *service) Update(ctx context.Context, userID, id string, req UpdateRequestRequest) (RequestResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	var updated *LeaveRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.UserID.String() != userID {
			return requesterrors.ErrNotOwner
		}
		if current.Status != StatusDraft && current.Status != StatusRevisionRequested {
			return requesterrors.ErrInvalidTransition
		}

		policy, err := s.activePolicy(ctx, current.ActivityTypeID.String())
		if err != nil {
			return err
		}
		if !policy.AllowOverlapping {
			excludeID := current.ID.String()
			overlap, err := qtx.HasOverlapping(ctx, userID, start, end, &excludeID)
			if err != nil {
				return err
			}
			if overlap {
				return requesterrors.ErrOverlappingRequest
			}
		}

		old := *current
		current.StartDate = start
		current.EndDate = end
		current.Reason = req.Reason

		if err := qtx.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return s.auditor.Record(ctx, tx, "LeaveRequest", current.ID.String(), "Updated", old, current)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*updated), nil
}

func (s *service) Submit(ctx context.Context, userID, id string) (RequestResponse, error) {
	var submitted *LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.UserID.String() != userID {
			return requesterrors.ErrNotOwner
		}
		if current.Status != StatusDraft && current.Status != StatusRevisionRequested {
			return requesterrors.ErrInvalidTransition
		}

		policy, err := s.activePolicy(ctx, current.ActivityTypeID.String())
		if err != nil {
			return err
		}

		engine := s.approvals.WithTx(tx)
		if current.Status == StatusRevisionRequested {
			if err := engine.ClearChain(ctx, current.ID.String()); err != nil {
				return err
			}
		}

		now := time.Now()
		current.SubmittedAt = &now

		if !policy.RequiresApproval || policy.ApprovalWorkflow == activitytype.WorkflowAutoApprove {
			current.Status = StatusApproved
			current.DecidedAt = &now

			if policy.DeductsFromBalance {
				if err := s.balances.WithTx(tx).Deduct(ctx, userID, current.ActivityTypeID.String(), current.StartDate.Year(), current.TotalDays); err != nil {
					return err
				}
			}
			if err := qtx.Update(ctx, current); err != nil {
				return err
			}
			if err := s.emitLifecycle(ctx, tx, current, events.EventRequestApproved, userID, ""); err != nil {
				return err
			}
		} else {
			chain, err := engine.GenerateChain(ctx, current.ID, userID, policy, now)
			if err != nil {
				return err
			}

			current.Status = StatusPending
			if policy.DeductsFromBalance {
				if err := s.balances.WithTx(tx).AddPending(ctx, userID, current.ActivityTypeID.String(), current.StartDate.Year(), current.TotalDays); err != nil {
					return err
				}
			}
			if err := qtx.Update(ctx, current); err != nil {
				return err
			}
			if err := s.emitLifecycle(ctx, tx, current, events.EventRequestSubmitted, userID, ""); err != nil {
				return err
			}
			if err := s.emitApprovalTasks(ctx, tx, current, chain); err != nil {
				return err
			}
		}

		submitted = current
		return s.auditor.Record(ctx, tx, "LeaveRequest", current.ID.String(), "Submitted", nil, current)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.logger.Info("request submitted",
		zap.String("request_id", submitted.ID.String()),
		zap.String("status", submitted.Status),
	)
	return mapToResponse(*submitted), nil
}

func (s *service) Approve(ctx context.Context, approverID, id string, comment *string) (RequestResponse, error) {
	var result *LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return requesterrors.ErrInvalidTransition
		}

		engine := s.approvals.WithTx(tx)
		now := time.Now()

		slot, err := engine.CanApprove(ctx, id, approverID, now)
		if err != nil {
			return err
		}
		if err := engine.RecordDecision(ctx, slot, approval.StatusApproved, comment); err != nil {
			return err
		}

		profile, err := s.users.GetByID(ctx, current.UserID.String())
		if err != nil {
			return err
		}
		complete, err := engine.IsComplete(ctx, id, profile.ApprovalLogic)
		if err != nil {
			return err
		}

		if complete {
			policy, err := s.policies.Snapshot(ctx, current.ActivityTypeID.String())
			if err != nil {
				return err
			}

			current.Status = StatusApproved
			current.DecidedAt = &now

			if policy.DeductsFromBalance {
				ledger := s.balances.WithTx(tx)
				userID := current.UserID.String()
				typeID := current.ActivityTypeID.String()
				year := current.StartDate.Year()
				if err := ledger.RemovePending(ctx, userID, typeID, year, current.TotalDays); err != nil {
					return err
				}
				if err := ledger.Deduct(ctx, userID, typeID, year, current.TotalDays); err != nil {
					return err
				}
			}
			if err := qtx.Update(ctx, current); err != nil {
				return err
			}
			if err := s.emitLifecycle(ctx, tx, current, events.EventRequestApproved, approverID, ""); err != nil {
				return err
			}
		} else {
			next, err := engine.NextPendingApproval(ctx, id)
			if err != nil {
				return err
			}
			if next != nil {
				if err := s.emitApprovalTasks(ctx, tx, current, []approval.RequestApproval{*next}); err != nil {
					return err
				}
			}
		}

		result = current
		return s.auditor.Record(ctx, tx, "RequestApproval", slot.ID.String(), "Approved", nil, slot)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*result), nil
}

// Reject terminates the request on the first rejection regardless of how
// many slots remain.
func (s *service) Reject(ctx context.Context, approverID, id string, comment *string) (RequestResponse, error) {
	var result *LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return requesterrors.ErrInvalidTransition
		}

		engine := s.approvals.WithTx(tx)
		now := time.Now()

		slot, err := engine.CanApprove(ctx, id, approverID, now)
		if err != nil {
			return err
		}
		if err := engine.RecordDecision(ctx, slot, approval.StatusRejected, comment); err != nil {
			return err
		}

		current.Status = StatusRejected
		current.DecidedAt = &now

		policy, err := s.policies.Snapshot(ctx, current.ActivityTypeID.String())
		if err != nil {
			return err
		}
		if policy.DeductsFromBalance {
			if err := s.balances.WithTx(tx).RemovePending(ctx, current.UserID.String(), current.ActivityTypeID.String(), current.StartDate.Year(), current.TotalDays); err != nil {
				return err
			}
		}

		if err := qtx.Update(ctx, current); err != nil {
			return err
		}

		rejectComment := ""
		if comment != nil {
			rejectComment = *comment
		}
		if err := s.emitLifecycle(ctx, tx, current, events.EventRequestRejected, approverID, rejectComment); err != nil {
			return err
		}

		result = current
		return s.auditor.Record(ctx, tx, "RequestApproval", slot.ID.String(), "Rejected", nil, slot)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*result), nil
}

func (s *service) Cancel(ctx context.Context, userID, id string) (RequestResponse, error) {
	var result *LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.UserID.String() != userID {
			return requesterrors.ErrNotOwner
		}

		switch current.Status {
		case StatusDraft, StatusPending, StatusApproved, StatusRevisionRequested:
		default:
			return requesterrors.ErrInvalidTransition
		}

		policy, err := s.policies.Snapshot(ctx, current.ActivityTypeID.String())
		if err != nil {
			return err
		}
		if !policy.AllowCancellation {
			return requesterrors.ErrCancellationNotAllowed
		}
		if policy.CancellationDeadlineHours != nil {
			deadline := current.StartDate.Add(-time.Duration(*policy.CancellationDeadlineHours) * time.Hour)
			if time.Now().After(deadline) {
				return requesterrors.ErrCancellationDeadlinePassed
			}
		}

		if policy.DeductsFromBalance {
			ledger := s.balances.WithTx(tx)
			typeID := current.ActivityTypeID.String()
			year := current.StartDate.Year()
			switch current.Status {
			case StatusPending:
				if err := ledger.RemovePending(ctx, userID, typeID, year, current.TotalDays); err != nil {
					return err
				}
			case StatusApproved:
				if err := ledger.Restore(ctx, userID, typeID, year, current.TotalDays); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		current.Status = StatusCancelled
		current.CancelledAt = &now

		if err := qtx.Update(ctx, current); err != nil {
			return err
		}
		if err := s.emitLifecycle(ctx, tx, current, events.EventRequestCancelled, userID, ""); err != nil {
			return err
		}

		result = current
		return s.auditor.Record(ctx, tx, "LeaveRequest", current.ID.String(), "Cancelled", nil, current)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*result), nil
}

func (s *service) RequestRevision(ctx context.Context, approverID, id, comment string) (RequestResponse, error) {
	if comment == "" {
		return RequestResponse{}, requesterrors.ErrCommentRequired
	}

	var result *LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := s.findForUpdate(ctx, qtx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return requesterrors.ErrInvalidTransition
		}

		engine := s.approvals.WithTx(tx)
		if _, err := engine.CanApprove(ctx, id, approverID, time.Now()); err != nil {
			return err
		}

		policy, err := s.policies.Snapshot(ctx, current.ActivityTypeID.String())
		if err != nil {
			return err
		}
		if policy.DeductsFromBalance {
			if err := s.balances.WithTx(tx).RemovePending(ctx, current.UserID.String(), current.ActivityTypeID.String(), current.StartDate.Year(), current.TotalDays); err != nil {
				return err
			}
		}

		current.Status = StatusRevisionRequested
		if err := qtx.Update(ctx, current); err != nil {
			return err
		}

		note := &RequestComment{
			ID:        uuid.New(),
			RequestID: current.ID,
			AuthorID:  uuid.MustParse(approverID),
			Kind:      CommentKindRevision,
			Comment:   comment,
		}
		if err := qtx.CreateComment(ctx, note); err != nil {
			return err
		}

		if err := s.emitLifecycle(ctx, tx, current, events.EventRequestRevisionRequested, approverID, comment); err != nil {
			return err
		}

		result = current
		return s.auditor.Record(ctx, tx, "LeaveRequest", current.ID.String(), "RevisionRequested", nil, note)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*result), nil
}

func (s *service) GetByID(ctx context.Context, id string) (RequestResponse, error) {
	req, err := s.find(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*req), nil
}

func (s *service) GetComments(ctx context.Context, id string) ([]CommentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}

	rows, err := s.repo.FindCommentsByRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := make([]CommentResponse, len(rows))
	for i, c := range rows {
		resp[i] = mapToCommentResponse(c)
	}
	return resp, nil
}

func (s *service) GetUserRequests(ctx context.Context, userID, status string) ([]RequestResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}

	rows, err := s.repo.FindByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	return mapAll(rows), nil
}

func (s *service) GetTeamRequests(ctx context.Context, managerID string) ([]RequestResponse, error) {
	subordinates, err := s.users.GetSubordinateTree(ctx, managerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(subordinates))
	for i, p := range subordinates {
		ids[i] = p.ID.String()
	}

	rows, err := s.repo.FindByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mapAll(rows), nil
}

func (s *service) GetPendingApprovals(ctx context.Context, approverID string) ([]RequestResponse, error) {
	slots, err := s.approvals.PendingSlotsFor(ctx, approverID, time.Now())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(slots))
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		id := slot.RequestID.String()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// A slot can outlive its request's PENDING status when a sibling slot
	// already terminated the request.
	pending := rows[:0]
	for _, row := range rows {
		if row.Status == StatusPending {
			pending = append(pending, row)
		}
	}
	return mapAll(pending), nil
}

func (s *service) find(ctx context.Context, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *service) findForUpdate(ctx context.Context, qtx Repository, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}

	req, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *service) emitLifecycle(ctx context.Context, tx *gorm.DB, req *LeaveRequest, eventType, actorID, comment string) error {
	payload, err := json.Marshal(events.RequestLifecycleEvent{
		EventType:     eventType,
		RequestID:     req.ID.String(),
		RequestNumber: req.RequestNumber,
		UserID:        req.UserID.String(),
		CompanyID:     req.CompanyID.String(),
		ActorID:       actorID,
		Status:        req.Status,
		TotalDays:     req.TotalDays,
		Comment:       comment,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "LeaveRequest",
		AggregateID:   req.ID.String(),
		EventType:     eventType,
		Topic:         events.RequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// emitApprovalTasks notifies the approvers whose slots sit at the lowest
// still-pending level.
func (s *service) emitApprovalTasks(ctx context.Context, tx *gorm.DB, req *LeaveRequest, chain []approval.RequestApproval) error {
	firstLevel := 0
	for _, slot := range chain {
		if slot.Status != approval.StatusPending {
			continue
		}
		if firstLevel == 0 || slot.Level < firstLevel {
			firstLevel = slot.Level
		}
	}
	if firstLevel == 0 {
		return nil
	}

	outbox := s.outbox.WithTx(tx)
	for _, slot := range chain {
		if slot.Status != approval.StatusPending || slot.Level != firstLevel {
			continue
		}

		payload, err := json.Marshal(events.ApprovalPendingEvent{
			EventType:     events.EventApprovalPending,
			RequestID:     req.ID.String(),
			RequestNumber: req.RequestNumber,
			ApproverID:    slot.ApproverID.String(),
			Level:         slot.Level,
			Sequence:      slot.Sequence,
			OccurredAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		if err := outbox.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "RequestApproval",
			AggregateID:   slot.ID.String(),
			EventType:     events.EventApprovalPending,
			Topic:         events.ApprovalTaskTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return err
		}
	}
	return nil
}

func mapAll(rows []LeaveRequest) []RequestResponse {
	resp := make([]RequestResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToResponse(row)
	}
	return resp
}
