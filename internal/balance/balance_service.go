package balance

import (
	"context"
	"errors"

	"leaveflow/internal/activitytype"
	"leaveflow/internal/audit"
	balanceerrors "leaveflow/internal/balance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PolicyReader is the slice of the activity type service the ledger needs.
type PolicyReader interface {
	Snapshot(ctx context.Context, id string) (*activitytype.ActivityType, error)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock

// Ledger is the balance-accounting contract consumed by the request
// lifecycle. Every mutation runs in a transaction, takes a row lock, and
// records an audit entry with the before/after values. WithTx binds the
// ledger to a caller-owned transaction so a lifecycle transition and its
// balance effects commit or roll back as one unit.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger

	Initialize(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error)
	Deduct(ctx context.Context, userID, activityTypeID string, year int, days float64) error
	Restore(ctx context.Context, userID, activityTypeID string, year int, days float64) error
	AddPending(ctx context.Context, userID, activityTypeID string, year int, days float64) error
	RemovePending(ctx context.Context, userID, activityTypeID string, year int, days float64) error
	Adjust(ctx context.Context, userID, activityTypeID string, year int, delta float64, reason string) error
	ProcessCarryOver(ctx context.Context, userID string, fromYear int) error
	HasSufficientBalance(ctx context.Context, userID, activityTypeID string, year int, requiredDays float64) (bool, error)
}

type Service interface {
	Ledger

	GetBalance(ctx context.Context, userID, activityTypeID string, year int) (BalanceResponse, error)
	GetUserBalances(ctx context.Context, userID string, year int) ([]BalanceResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	policies PolicyReader
	auditor  audit.Recorder
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, policies PolicyReader, auditor audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, policies: policies, auditor: auditor, logger: l}
}

func (s *service) WithTx(tx *gorm.DB) Ledger {
	return &service{
		db:       tx,
		repo:     s.repo.WithTx(tx),
		policies: s.policies,
		auditor:  s.auditor,
		logger:   s.logger,
	}
}

func validateKey(userID, activityTypeID string, year int) error {
	if _, err := uuid.Parse(userID); err != nil {
		return balanceerrors.ErrInvalidUserID
	}
	if _, err := uuid.Parse(activityTypeID); err != nil {
		return balanceerrors.ErrInvalidActivityTypeID
	}
	if year < 1970 || year > 9999 {
		return balanceerrors.ErrInvalidYear
	}
	return nil
}

func (s *service) Initialize(ctx context.Context, userID, activityTypeID string, year int) (*UserBalance, error) {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return nil, err
	}

	var row *UserBalance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = s.initializeInTx(ctx, tx, userID, activityTypeID, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// initializeInTx is idempotent: an existing row is returned untouched.
func (s *service) initializeInTx(ctx context.Context, tx *gorm.DB, userID, activityTypeID string, year int) (*UserBalance, error) {
	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindForUpdate(ctx, userID, activityTypeID, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	policy, err := s.policies.Snapshot(ctx, activityTypeID)
	if err != nil {
		return nil, err
	}

	row := &UserBalance{
		ID:             uuid.New(),
		UserID:         uuid.MustParse(userID),
		ActivityTypeID: uuid.MustParse(activityTypeID),
		Year:           year,
		TotalDays:      policy.DefaultBalance(),
	}

	if err := qtx.Create(ctx, row); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "Initialized", nil, row); err != nil {
		return nil, err
	}

	s.logger.Info("balance initialized",
		zap.String("user_id", userID),
		zap.String("activity_type_id", activityTypeID),
		zap.Int("year", year),
		zap.Float64("total_days", row.TotalDays),
	)
	return row, nil
}

func (s *service) Deduct(ctx context.Context, userID, activityTypeID string, year int, days float64) error {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return err
	}
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.initializeInTx(ctx, tx, userID, activityTypeID, year)
		if err != nil {
			return err
		}

		oldUsed := row.UsedDays
		row.UsedDays += days

		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "Deducted",
			map[string]any{"usedDays": oldUsed},
			map[string]any{"usedDays": row.UsedDays, "deductedDays": days},
		)
	})
}

// Restore credits back previously used days. Missing rows are a no-op;
// usedDays never drops below zero.
func (s *service) Restore(ctx context.Context, userID, activityTypeID string, year int, days float64) error {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return err
	}
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		row, err := qtx.FindForUpdate(ctx, userID, activityTypeID, year)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		oldUsed := row.UsedDays
		row.UsedDays = max(0, row.UsedDays-days)

		if err := qtx.Update(ctx, row); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "Restored",
			map[string]any{"usedDays": oldUsed},
			map[string]any{"usedDays": row.UsedDays, "restoredDays": days},
		)
	})
}

func (s *service) AddPending(ctx context.Context, userID, activityTypeID string, year int, days float64) error {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return err
	}
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.initializeInTx(ctx, tx, userID, activityTypeID, year)
		if err != nil {
			return err
		}

		oldPending := row.PendingDays
		row.PendingDays += days

		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "PendingAdded",
			map[string]any{"pendingDays": oldPending},
			map[string]any{"pendingDays": row.PendingDays},
		)
	})
}

func (s *service) RemovePending(ctx context.Context, userID, activityTypeID string, year int, days float64) error {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return err
	}
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		row, err := qtx.FindForUpdate(ctx, userID, activityTypeID, year)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		oldPending := row.PendingDays
		row.PendingDays = max(0, row.PendingDays-days)

		if err := qtx.Update(ctx, row); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "PendingRemoved",
			map[string]any{"pendingDays": oldPending},
			map[string]any{"pendingDays": row.PendingDays},
		)
	})
}

// Adjust applies a signed correction. The reason is recorded for the audit
// trail only, never validated.
func (s *service) Adjust(ctx context.Context, userID, activityTypeID string, year int, delta float64, reason string) error {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.initializeInTx(ctx, tx, userID, activityTypeID, year)
		if err != nil {
			return err
		}

		oldAdjustment := row.AdjustmentDays
		row.AdjustmentDays += delta

		if err := s.repo.WithTx(tx).Update(ctx, row); err != nil {
			return err
		}

		return s.auditor.Record(ctx, tx, "UserBalance", row.ID.String(), "Adjusted",
			map[string]any{"adjustmentDays": oldAdjustment},
			map[string]any{"adjustmentDays": row.AdjustmentDays, "adjustedBy": delta, "reason": reason},
		)
	})
}

// ProcessCarryOver rolls each carry-over-enabled balance the user holds in
// fromYear into fromYear+1. The target row's carriedOverDays is overwritten,
// not accumulated, so reprocessing a year is safe.
func (s *service) ProcessCarryOver(ctx context.Context, userID string, fromYear int) error {
	if _, err := uuid.Parse(userID); err != nil {
		return balanceerrors.ErrInvalidUserID
	}
	if fromYear < 1970 || fromYear > 9999 {
		return balanceerrors.ErrInvalidYear
	}

	toYear := fromYear + 1

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		previous, err := qtx.FindAllForUserYear(ctx, userID, fromYear)
		if err != nil {
			return err
		}

		for _, prev := range previous {
			policy, err := s.policies.Snapshot(ctx, prev.ActivityTypeID.String())
			if err != nil || !policy.AllowCarryOver {
				continue
			}

			carryOver := prev.AvailableDays()
			if policy.MaxCarryOverDays != nil {
				carryOver = min(carryOver, *policy.MaxCarryOverDays)
			}
			if carryOver <= 0 {
				continue
			}

			target, err := s.initializeInTx(ctx, tx, userID, prev.ActivityTypeID.String(), toYear)
			if err != nil {
				return err
			}

			target.CarriedOverDays = carryOver
			if err := qtx.Update(ctx, target); err != nil {
				return err
			}

			if err := s.auditor.Record(ctx, tx, "UserBalance", target.ID.String(), "CarryOver",
				map[string]any{"fromYear": fromYear},
				map[string]any{"carriedOverDays": carryOver},
			); err != nil {
				return err
			}

			s.logger.Info("carry over processed",
				zap.String("user_id", userID),
				zap.String("activity_type_id", prev.ActivityTypeID.String()),
				zap.Int("from_year", fromYear),
				zap.Float64("carried_over_days", carryOver),
			)
		}

		return nil
	})
}

// HasSufficientBalance compares against the activity type's default annual
// balance when no row exists yet; the row is not created by a check.
func (s *service) HasSufficientBalance(ctx context.Context, userID, activityTypeID string, year int, requiredDays float64) (bool, error) {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return false, err
	}

	row, err := s.repo.Find(ctx, userID, activityTypeID, year)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		policy, err := s.policies.Snapshot(ctx, activityTypeID)
		if err != nil {
			return false, err
		}
		return policy.DefaultBalance() >= requiredDays, nil
	}

	return row.AvailableDays() >= requiredDays, nil
}

func (s *service) GetBalance(ctx context.Context, userID, activityTypeID string, year int) (BalanceResponse, error) {
	if err := validateKey(userID, activityTypeID, year); err != nil {
		return BalanceResponse{}, err
	}

	row, err := s.repo.Find(ctx, userID, activityTypeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		return BalanceResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetUserBalances(ctx context.Context, userID string, year int) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	rows, err := s.repo.FindAllForUserYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToResponse(row)
	}
	return resp, nil
}

func mapToResponse(b UserBalance) BalanceResponse {
	return BalanceResponse{
		UserID:          b.UserID.String(),
		ActivityTypeID:  b.ActivityTypeID.String(),
		Year:            b.Year,
		TotalDays:       b.TotalDays,
		UsedDays:        b.UsedDays,
		PendingDays:     b.PendingDays,
		CarriedOverDays: b.CarriedOverDays,
		AdjustmentDays:  b.AdjustmentDays,
		AvailableDays:   b.AvailableDays(),
	}
}
