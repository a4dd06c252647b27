package request_test

import (
	"context"
	"testing"
	"time"

	"leaveflow/internal/activitytype"
	"leaveflow/internal/approval"
	approvalerrors "leaveflow/internal/approval/errors"
	"leaveflow/internal/audit"
	"leaveflow/internal/balance"
	"leaveflow/internal/events"
	"leaveflow/internal/messaging/kafka"
	"leaveflow/internal/request"
	requesterrors "leaveflow/internal/request/errors"
	"leaveflow/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	createFn            func(ctx context.Context, r *request.LeaveRequest) error
	findByIDFn          func(ctx context.Context, id string) (*request.LeaveRequest, error)
	findByIDForUpdateFn func(ctx context.Context, id string) (*request.LeaveRequest, error)
	updateFn            func(ctx context.Context, r *request.LeaveRequest) error
	findByUserFn        func(ctx context.Context, userID, status string) ([]request.LeaveRequest, error)
	findByUsersFn       func(ctx context.Context, userIDs []string) ([]request.LeaveRequest, error)
	findByIDsFn         func(ctx context.Context, ids []string) ([]request.LeaveRequest, error)
	hasOverlappingFn    func(ctx context.Context, userID string, start, end time.Time, excludeID *string) (bool, error)
	createCommentFn     func(ctx context.Context, c *request.RequestComment) error
	findCommentsFn      func(ctx context.Context, requestID string) ([]request.RequestComment, error)
}

func (f *fakeRequestRepository) WithTx(tx *gorm.DB) request.Repository { return f }

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindByIDForUpdate(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) Update(ctx context.Context, r *request.LeaveRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByUser(ctx context.Context, userID, status string) ([]request.LeaveRequest, error) {
	if f.findByUserFn != nil {
		return f.findByUserFn(ctx, userID, status)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindByUsers(ctx context.Context, userIDs []string) ([]request.LeaveRequest, error) {
	if f.findByUsersFn != nil {
		return f.findByUsersFn(ctx, userIDs)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindByIDs(ctx context.Context, ids []string) ([]request.LeaveRequest, error) {
	if f.findByIDsFn != nil {
		return f.findByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeRequestRepository) HasOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingFn != nil {
		return f.hasOverlappingFn(ctx, userID, start, end, excludeID)
	}
	return false, nil
}

func (f *fakeRequestRepository) CreateComment(ctx context.Context, c *request.RequestComment) error {
	if f.createCommentFn != nil {
		return f.createCommentFn(ctx, c)
	}
	return nil
}

func (f *fakeRequestRepository) FindCommentsByRequest(ctx context.Context, requestID string) ([]request.RequestComment, error) {
	if f.findCommentsFn != nil {
		return f.findCommentsFn(ctx, requestID)
	}
	return nil, nil
}

type ledgerCall struct {
	op   string
	days float64
	year int
}

type fakeLedger struct {
	calls         []ledgerCall
	hasSufficient bool
}

func (f *fakeLedger) WithTx(tx *gorm.DB) balance.Ledger { return f }

func (f *fakeLedger) Initialize(ctx context.Context, userID, typeID string, year int) (*balance.UserBalance, error) {
	return &balance.UserBalance{}, nil
}

func (f *fakeLedger) Deduct(ctx context.Context, userID, typeID string, year int, days float64) error {
	f.calls = append(f.calls, ledgerCall{op: "deduct", days: days, year: year})
	return nil
}

func (f *fakeLedger) Restore(ctx context.Context, userID, typeID string, year int, days float64) error {
	f.calls = append(f.calls, ledgerCall{op: "restore", days: days, year: year})
	return nil
}

func (f *fakeLedger) AddPending(ctx context.Context, userID, typeID string, year int, days float64) error {
	f.calls = append(f.calls, ledgerCall{op: "add_pending", days: days, year: year})
	return nil
}

func (f *fakeLedger) RemovePending(ctx context.Context, userID, typeID string, year int, days float64) error {
	f.calls = append(f.calls, ledgerCall{op: "remove_pending", days: days, year: year})
	return nil
}

func (f *fakeLedger) Adjust(ctx context.Context, userID, typeID string, year int, delta float64, reason string) error {
	return nil
}

func (f *fakeLedger) ProcessCarryOver(ctx context.Context, userID string, fromYear int) error {
	return nil
}

func (f *fakeLedger) HasSufficientBalance(ctx context.Context, userID, typeID string, year int, required float64) (bool, error) {
	return f.hasSufficient, nil
}

func (f *fakeLedger) GetBalance(ctx context.Context, userID, typeID string, year int) (balance.BalanceResponse, error) {
	return balance.BalanceResponse{}, nil
}

func (f *fakeLedger) GetUserBalances(ctx context.Context, userID string, year int) ([]balance.BalanceResponse, error) {
	return nil, nil
}

type fakeApprovalService struct {
	generateChainFn   func(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]approval.RequestApproval, error)
	clearChainFn      func(ctx context.Context, requestID string) error
	isCompleteFn      func(ctx context.Context, requestID, approvalLogic string) (bool, error)
	nextPendingFn     func(ctx context.Context, requestID string) (*approval.RequestApproval, error)
	canApproveFn      func(ctx context.Context, requestID, userID string, asOf time.Time) (*approval.RequestApproval, error)
	recordDecisionFn  func(ctx context.Context, row *approval.RequestApproval, status string, comment *string) error
	pendingSlotsForFn func(ctx context.Context, userID string, asOf time.Time) ([]approval.RequestApproval, error)
}

func (f *fakeApprovalService) WithTx(tx *gorm.DB) approval.Engine { return f }

func (f *fakeApprovalService) GenerateChain(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]approval.RequestApproval, error) {
	if f.generateChainFn != nil {
		return f.generateChainFn(ctx, requestID, requesterID, policy, asOf)
	}
	return nil, nil
}

func (f *fakeApprovalService) ClearChain(ctx context.Context, requestID string) error {
	if f.clearChainFn != nil {
		return f.clearChainFn(ctx, requestID)
	}
	return nil
}

func (f *fakeApprovalService) IsComplete(ctx context.Context, requestID, approvalLogic string) (bool, error) {
	if f.isCompleteFn != nil {
		return f.isCompleteFn(ctx, requestID, approvalLogic)
	}
	return false, nil
}

func (f *fakeApprovalService) NextPendingApproval(ctx context.Context, requestID string) (*approval.RequestApproval, error) {
	if f.nextPendingFn != nil {
		return f.nextPendingFn(ctx, requestID)
	}
	return nil, nil
}

func (f *fakeApprovalService) ResolveApprover(ctx context.Context, approverID string, asOf time.Time) (uuid.UUID, error) {
	return uuid.MustParse(approverID), nil
}

func (f *fakeApprovalService) CanApprove(ctx context.Context, requestID, userID string, asOf time.Time) (*approval.RequestApproval, error) {
	if f.canApproveFn != nil {
		return f.canApproveFn(ctx, requestID, userID, asOf)
	}
	return nil, approvalerrors.ErrNotAuthorizedApprover
}

func (f *fakeApprovalService) RecordDecision(ctx context.Context, row *approval.RequestApproval, status string, comment *string) error {
	if f.recordDecisionFn != nil {
		return f.recordDecisionFn(ctx, row, status, comment)
	}
	row.Status = status
	return nil
}

func (f *fakeApprovalService) PendingSlotsFor(ctx context.Context, userID string, asOf time.Time) ([]approval.RequestApproval, error) {
	if f.pendingSlotsForFn != nil {
		return f.pendingSlotsForFn(ctx, userID, asOf)
	}
	return nil, nil
}

func (f *fakeApprovalService) GetChain(ctx context.Context, requestID string) ([]approval.ApprovalResponse, error) {
	return nil, nil
}

func (f *fakeApprovalService) CreateProxy(ctx context.Context, approverID string, req approval.CreateProxyRequest) (approval.ProxyResponse, error) {
	return approval.ProxyResponse{}, nil
}

func (f *fakeApprovalService) DeactivateProxy(ctx context.Context, approverID, proxyID string) error {
	return nil
}

func (f *fakeApprovalService) GetProxies(ctx context.Context, approverID string) ([]approval.ProxyResponse, error) {
	return nil, nil
}

type fakePolicies struct {
	policy *activitytype.ActivityType
}

func (f *fakePolicies) Snapshot(ctx context.Context, id string) (*activitytype.ActivityType, error) {
	return f.policy, nil
}

type fakeCalendar struct {
	dates map[time.Time]bool
}

func (f *fakeCalendar) ActiveDatesInRange(ctx context.Context, companyID string, from, to time.Time) (map[time.Time]bool, error) {
	return f.dates, nil
}

type fakeDirectoryReader struct {
	profile      *user.Profile
	subordinates []user.Profile
}

func (f *fakeDirectoryReader) GetByID(ctx context.Context, id string) (*user.Profile, error) {
	if f.profile != nil {
		return f.profile, nil
	}
	return &user.Profile{ID: uuid.MustParse(id), ApprovalLogic: user.ApprovalLogicAnyManager}, nil
}

func (f *fakeDirectoryReader) GetSubordinateTree(ctx context.Context, managerID string) ([]user.Profile, error) {
	return f.subordinates, nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) NextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error           { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, reason string) error { return nil }

func (f *fakeOutbox) eventTypes() []string {
	types := make([]string, len(f.events))
	for i, e := range f.events {
		types[i] = e.EventType
	}
	return types
}

type requestServiceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   request.Service
	repo      *fakeRequestRepository
	ledger    *fakeLedger
	approvals *fakeApprovalService
	policies  *fakePolicies
	calendar  *fakeCalendar
	users     *fakeDirectoryReader
	outbox    *fakeOutbox
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	deps := &requestServiceDeps{
		sqlMock:   sqlMock,
		repo:      &fakeRequestRepository{},
		ledger:    &fakeLedger{hasSufficient: true},
		approvals: &fakeApprovalService{},
		policies:  &fakePolicies{policy: defaultPolicy()},
		calendar:  &fakeCalendar{},
		users:     &fakeDirectoryReader{},
		outbox:    &fakeOutbox{},
	}
	deps.service = request.NewService(
		gdb,
		deps.repo,
		deps.ledger,
		deps.approvals,
		deps.policies,
		deps.calendar,
		deps.users,
		&fakeCounter{},
		deps.outbox,
		audit.NewNopRecorder(),
	)
	return deps
}

func defaultPolicy() *activitytype.ActivityType {
	return &activitytype.ActivityType{
		ID:                 uuid.New(),
		IsActive:           true,
		RequiresApproval:   true,
		ApprovalWorkflow:   activitytype.WorkflowSingleLevel,
		DeductsFromBalance: true,
		TimeTrackingMode:   activitytype.TimeTrackingFullDay,
		AllowCancellation:  true,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	userID := uuid.New().String()

	t.Run("creates draft with working day count", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		// 2026-03-02 is a Monday; the range spans one weekend.
		var created *request.LeaveRequest
		deps.repo.createFn = func(ctx context.Context, r *request.LeaveRequest) error {
			created = r
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-10",
			Reason:         "family trip",
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, request.StatusDraft, resp.Status)
		assert.Equal(t, 7.0, resp.TotalDays)
		assert.Equal(t, "LR-2026-000001", resp.RequestNumber)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("half day mode always charges half a day", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.policies.policy.TimeTrackingMode = activitytype.TimeTrackingHalfDay

		resp, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0.5, resp.TotalDays)
	})

	t.Run("holidays excluded from count", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.calendar.dates = map[time.Time]bool{
			time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC): true,
		}

		resp, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 4.0, resp.TotalDays)
	})

	t.Run("negative insufficient balance", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.ledger.hasSufficient = false

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientBalance)
	})

	t.Run("negative balance allowed skips the check", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.ledger.hasSufficient = false
		deps.policies.policy.AllowNegativeBalance = true

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.NoError(t, err)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.repo.hasOverlappingFn = func(ctx context.Context, uid string, start, end time.Time, excludeID *string) (bool, error) {
			assert.Nil(t, excludeID)
			return true, nil
		}

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrOverlappingRequest)
	})

	t.Run("overlap allowed by policy", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.policies.policy.AllowOverlapping = true
		deps.repo.hasOverlappingFn = func(ctx context.Context, uid string, start, end time.Time, excludeID *string) (bool, error) {
			t.Fatal("overlap check must be skipped")
			return false, nil
		}

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.NoError(t, err)
	})

	t.Run("negative inverted dates", func(t *testing.T) {
		deps := setupRequestServiceTest(t)

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-06",
			EndDate:        "2026-03-02",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateRange)
	})

	t.Run("negative inactive activity type", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.policies.policy.IsActive = false

		_, err := deps.service.Create(ctx, companyID, userID, request.CreateRequestRequest{
			ActivityTypeID: deps.policies.policy.ID.String(),
			StartDate:      "2026-03-02",
			EndDate:        "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInactiveActivityType)
	})
}

func draftRequest(userID string, policy *activitytype.ActivityType) *request.LeaveRequest {
	return &request.LeaveRequest{
		ID:             uuid.New(),
		RequestNumber:  "LR-2026-000042",
		CompanyID:      uuid.New(),
		UserID:         uuid.MustParse(userID),
		ActivityTypeID: policy.ID,
		StartDate:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		TotalDays:      5,
		Status:         request.StatusDraft,
	}
}

func TestRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("auto approve deducts immediately", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.policies.policy.ApprovalWorkflow = activitytype.WorkflowAutoApprove

		current := draftRequest(userID, deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		resp, err := deps.service.Submit(ctx, userID, current.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.NotNil(t, resp.DecidedAt)
		assert.Equal(t, []ledgerCall{{op: "deduct", days: 5, year: 2026}}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestApproved}, deps.outbox.eventTypes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("approval path holds days as pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		approverID := uuid.New()
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		deps.approvals.generateChainFn = func(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]approval.RequestApproval, error) {
			return []approval.RequestApproval{
				{ID: uuid.New(), RequestID: requestID, ApproverID: approverID, Level: 1, Sequence: 1, Status: approval.StatusPending},
			}, nil
		}

		resp, err := deps.service.Submit(ctx, userID, current.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.NotNil(t, resp.SubmittedAt)
		assert.Equal(t, []ledgerCall{{op: "add_pending", days: 5, year: 2026}}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestSubmitted, events.EventApprovalPending}, deps.outbox.eventTypes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("resubmission clears the stale chain", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusRevisionRequested
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		cleared := false
		deps.approvals.clearChainFn = func(ctx context.Context, requestID string) error {
			cleared = true
			return nil
		}
		deps.approvals.generateChainFn = func(ctx context.Context, requestID uuid.UUID, requesterID string, policy *activitytype.ActivityType, asOf time.Time) ([]approval.RequestApproval, error) {
			return []approval.RequestApproval{{ID: uuid.New(), Status: approval.StatusPending, Level: 1}}, nil
		}

		_, err := deps.service.Submit(ctx, userID, current.ID.String())

		assert.NoError(t, err)
		assert.True(t, cleared)
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := draftRequest(uuid.New().String(), deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Submit(ctx, userID, current.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrNotOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusPending
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Submit(ctx, userID, current.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInvalidTransition)
	})
}

func TestRequestService_Approve(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	approverID := uuid.New().String()

	pendingRequest := func(policy *activitytype.ActivityType) *request.LeaveRequest {
		r := draftRequest(userID, policy)
		r.Status = request.StatusPending
		return r
	}

	t.Run("final approval converts pending to used", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := pendingRequest(deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		slot := &approval.RequestApproval{ID: uuid.New(), Status: approval.StatusPending}
		deps.approvals.canApproveFn = func(ctx context.Context, rid, uid string, asOf time.Time) (*approval.RequestApproval, error) {
			assert.Equal(t, approverID, uid)
			return slot, nil
		}
		deps.approvals.isCompleteFn = func(ctx context.Context, rid, logic string) (bool, error) {
			return true, nil
		}

		resp, err := deps.service.Approve(ctx, approverID, current.ID.String(), nil)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.Equal(t, []ledgerCall{
			{op: "remove_pending", days: 5, year: 2026},
			{op: "deduct", days: 5, year: 2026},
		}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestApproved}, deps.outbox.eventTypes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("intermediate approval keeps request pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := pendingRequest(deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		deps.approvals.canApproveFn = func(ctx context.Context, rid, uid string, asOf time.Time) (*approval.RequestApproval, error) {
			return &approval.RequestApproval{ID: uuid.New(), Status: approval.StatusPending}, nil
		}
		next := &approval.RequestApproval{ID: uuid.New(), ApproverID: uuid.New(), Level: 2, Sequence: 2, Status: approval.StatusPending}
		deps.approvals.nextPendingFn = func(ctx context.Context, rid string) (*approval.RequestApproval, error) {
			return next, nil
		}

		resp, err := deps.service.Approve(ctx, approverID, current.ID.String(), nil)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.Empty(t, deps.ledger.calls)
		assert.Equal(t, []string{events.EventApprovalPending}, deps.outbox.eventTypes())
	})

	t.Run("negative not an approver", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := pendingRequest(deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Approve(ctx, approverID, current.ID.String(), nil)

		assert.ErrorIs(t, err, approvalerrors.ErrNotAuthorizedApprover)
	})

	t.Run("negative request not pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := draftRequest(userID, deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Approve(ctx, approverID, current.ID.String(), nil)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidTransition)
	})
}

func TestRequestService_Reject(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	approverID := uuid.New().String()

	t.Run("single rejection terminates the request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusPending
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		deps.approvals.canApproveFn = func(ctx context.Context, rid, uid string, asOf time.Time) (*approval.RequestApproval, error) {
			return &approval.RequestApproval{ID: uuid.New(), Status: approval.StatusPending}, nil
		}

		comment := "dates clash with the release"
		resp, err := deps.service.Reject(ctx, approverID, current.ID.String(), &comment)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRejected, resp.Status)
		assert.NotNil(t, resp.DecidedAt)
		// Pending days are released, used days never touched.
		assert.Equal(t, []ledgerCall{{op: "remove_pending", days: 5, year: 2026}}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestRejected}, deps.outbox.eventTypes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_Cancel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("cancelling pending releases the hold", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusPending
		current.StartDate = time.Now().AddDate(0, 1, 0)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		resp, err := deps.service.Cancel(ctx, userID, current.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, request.StatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.Equal(t, []ledgerCall{{op: "remove_pending", days: 5, year: current.StartDate.Year()}}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestCancelled}, deps.outbox.eventTypes())
	})

	t.Run("cancelling approved restores used days", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusApproved
		current.StartDate = time.Now().AddDate(0, 1, 0)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		resp, err := deps.service.Cancel(ctx, userID, current.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, request.StatusCancelled, resp.Status)
		assert.Equal(t, []ledgerCall{{op: "restore", days: 5, year: current.StartDate.Year()}}, deps.ledger.calls)
	})

	t.Run("negative cancellation disabled by policy", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.policies.policy.AllowCancellation = false

		current := draftRequest(userID, deps.policies.policy)
		current.StartDate = time.Now().AddDate(0, 1, 0)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Cancel(ctx, userID, current.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrCancellationNotAllowed)
	})

	t.Run("negative deadline passed", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deadline := 48
		deps.policies.policy.CancellationDeadlineHours = &deadline

		current := draftRequest(userID, deps.policies.policy)
		current.StartDate = time.Now().Add(24 * time.Hour)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Cancel(ctx, userID, current.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrCancellationDeadlinePassed)
	})

	t.Run("negative already cancelled", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusCancelled
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Cancel(ctx, userID, current.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInvalidTransition)
	})
}

func TestRequestService_RequestRevision(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	approverID := uuid.New().String()

	t.Run("stores comment and releases hold", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusPending
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		deps.approvals.canApproveFn = func(ctx context.Context, rid, uid string, asOf time.Time) (*approval.RequestApproval, error) {
			return &approval.RequestApproval{ID: uuid.New(), Status: approval.StatusPending}, nil
		}

		var note *request.RequestComment
		deps.repo.createCommentFn = func(ctx context.Context, c *request.RequestComment) error {
			note = c
			return nil
		}

		resp, err := deps.service.RequestRevision(ctx, approverID, current.ID.String(), "please shorten the range")

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRevisionRequested, resp.Status)
		assert.NotNil(t, note)
		assert.Equal(t, request.CommentKindRevision, note.Kind)
		assert.Equal(t, "please shorten the range", note.Comment)
		assert.Equal(t, []ledgerCall{{op: "remove_pending", days: 5, year: 2026}}, deps.ledger.calls)
		assert.Equal(t, []string{events.EventRequestRevisionRequested}, deps.outbox.eventTypes())
	})

	t.Run("negative empty comment", func(t *testing.T) {
		deps := setupRequestServiceTest(t)

		_, err := deps.service.RequestRevision(ctx, approverID, uuid.New().String(), "")

		assert.ErrorIs(t, err, requesterrors.ErrCommentRequired)
	})
}

func TestRequestService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("keeps the original day count", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		current := draftRequest(userID, deps.policies.policy)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}
		deps.repo.hasOverlappingFn = func(ctx context.Context, uid string, start, end time.Time, excludeID *string) (bool, error) {
			assert.NotNil(t, excludeID)
			assert.Equal(t, current.ID.String(), *excludeID)
			return false, nil
		}

		resp, err := deps.service.Update(ctx, userID, current.ID.String(), request.UpdateRequestRequest{
			StartDate: "2026-04-01",
			EndDate:   "2026-04-03",
			Reason:    "shifted",
		})

		assert.NoError(t, err)
		assert.Equal(t, "2026-04-01", resp.StartDate)
		assert.Equal(t, 5.0, resp.TotalDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative locked after submission", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		current := draftRequest(userID, deps.policies.policy)
		current.Status = request.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			return current, nil
		}

		_, err := deps.service.Update(ctx, userID, current.ID.String(), request.UpdateRequestRequest{
			StartDate: "2026-04-01",
			EndDate:   "2026-04-03",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidTransition)
	})
}

func TestRequestService_GetPendingApprovals(t *testing.T) {
	ctx := context.Background()
	approverID := uuid.New().String()

	deps := setupRequestServiceTest(t)

	liveID := uuid.New()
	staleID := uuid.New()
	deps.approvals.pendingSlotsForFn = func(ctx context.Context, uid string, asOf time.Time) ([]approval.RequestApproval, error) {
		return []approval.RequestApproval{
			{ID: uuid.New(), RequestID: liveID, Status: approval.StatusPending},
			{ID: uuid.New(), RequestID: liveID, Status: approval.StatusPending},
			{ID: uuid.New(), RequestID: staleID, Status: approval.StatusPending},
		}, nil
	}
	deps.repo.findByIDsFn = func(ctx context.Context, ids []string) ([]request.LeaveRequest, error) {
		assert.Len(t, ids, 2)
		return []request.LeaveRequest{
			{ID: liveID, UserID: uuid.New(), CompanyID: uuid.New(), ActivityTypeID: uuid.New(), Status: request.StatusPending},
			{ID: staleID, UserID: uuid.New(), CompanyID: uuid.New(), ActivityTypeID: uuid.New(), Status: request.StatusRejected},
		}, nil
	}

	resp, err := deps.service.GetPendingApprovals(ctx, approverID)

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, liveID.String(), resp[0].ID)
}
