package holiday

import (
	"context"
	"fmt"
	"time"

	holidayerrors "leaveflow/internal/holiday/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock

// Calendar is the lookup the business-day calculator consumes.
type Calendar interface {
	ActiveDatesInRange(ctx context.Context, companyID string, from, to time.Time) (map[time.Time]bool, error)
}

type Service interface {
	Calendar

	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetForCompany(ctx context.Context, companyID string, year int) ([]HolidayResponse, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	group  singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// ActiveDatesInRange collapses concurrent lookups for the same company and
// range into one query; day calculation hits this on every create.
func (s *service) ActiveDatesInRange(ctx context.Context, companyID string, from, to time.Time) (map[time.Time]bool, error) {
	key := fmt.Sprintf("%s:%s:%s", companyID, from.Format("2006-01-02"), to.Format("2006-01-02"))

	v, err, _ := s.group.Do(key, func() (any, error) {
		holidays, err := s.repo.FindActiveInRange(ctx, companyID, from, to)
		if err != nil {
			return nil, err
		}

		dates := make(map[time.Time]bool, len(holidays))
		for _, h := range holidays {
			y, m, d := h.Date.Date()
			dates[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = true
		}
		return dates, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[time.Time]bool), nil
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	var companyID *uuid.UUID
	if req.CompanyID != nil && *req.CompanyID != "" {
		id, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return HolidayResponse{}, holidayerrors.ErrInvalidCompanyID
		}
		companyID = &id
	}

	h := &Holiday{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      req.Name,
		Date:      date,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("create holiday failed", zap.String("name", req.Name), zap.Error(err))
		return HolidayResponse{}, err
	}

	s.logger.Info("holiday created",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.Date),
	)
	return mapToResponse(*h), nil
}

func (s *service) GetForCompany(ctx context.Context, companyID string, year int) ([]HolidayResponse, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	holidays, err := s.repo.FindActiveInRange(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}
	return s.repo.Deactivate(ctx, id)
}

func mapToResponse(h Holiday) HolidayResponse {
	resp := HolidayResponse{
		ID:       h.ID.String(),
		Name:     h.Name,
		Date:     h.Date.Format("2006-01-02"),
		IsActive: h.IsActive,
	}
	if h.CompanyID != nil {
		v := h.CompanyID.String()
		resp.CompanyID = &v
	}
	return resp
}
