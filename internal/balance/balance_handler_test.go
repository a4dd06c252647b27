package balance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leaveflow/internal/balance"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeService struct {
	getUserBalancesFn func(ctx context.Context, userID string, year int) ([]balance.BalanceResponse, error)
	getBalanceFn      func(ctx context.Context, userID, activityTypeID string, year int) (balance.BalanceResponse, error)
	adjustFn          func(ctx context.Context, userID, activityTypeID string, year int, delta float64, reason string) error
	carryOverFn       func(ctx context.Context, userID string, fromYear int) error
	initializeFn      func(ctx context.Context, userID, activityTypeID string, year int) (*balance.UserBalance, error)
}

func (f *fakeService) WithTx(tx *gorm.DB) balance.Ledger { return f }

func (f *fakeService) Initialize(ctx context.Context, userID, activityTypeID string, year int) (*balance.UserBalance, error) {
	if f.initializeFn != nil {
		return f.initializeFn(ctx, userID, activityTypeID, year)
	}
	return &balance.UserBalance{ID: uuid.New()}, nil
}

func (f *fakeService) Deduct(context.Context, string, string, int, float64) error  { return nil }
func (f *fakeService) Restore(context.Context, string, string, int, float64) error { return nil }
func (f *fakeService) AddPending(context.Context, string, string, int, float64) error {
	return nil
}
func (f *fakeService) RemovePending(context.Context, string, string, int, float64) error {
	return nil
}

func (f *fakeService) Adjust(ctx context.Context, userID, activityTypeID string, year int, delta float64, reason string) error {
	if f.adjustFn != nil {
		return f.adjustFn(ctx, userID, activityTypeID, year, delta, reason)
	}
	return nil
}

func (f *fakeService) ProcessCarryOver(ctx context.Context, userID string, fromYear int) error {
	if f.carryOverFn != nil {
		return f.carryOverFn(ctx, userID, fromYear)
	}
	return nil
}

func (f *fakeService) HasSufficientBalance(context.Context, string, string, int, float64) (bool, error) {
	return true, nil
}

func (f *fakeService) GetBalance(ctx context.Context, userID, activityTypeID string, year int) (balance.BalanceResponse, error) {
	if f.getBalanceFn != nil {
		return f.getBalanceFn(ctx, userID, activityTypeID, year)
	}
	return balance.BalanceResponse{}, nil
}

func (f *fakeService) GetUserBalances(ctx context.Context, userID string, year int) ([]balance.BalanceResponse, error) {
	if f.getUserBalancesFn != nil {
		return f.getUserBalancesFn(ctx, userID, year)
	}
	return nil, nil
}

func TestHandler_GetUserBalances(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	resp := []balance.BalanceResponse{{UserID: userID, Year: 2026, TotalDays: 12, AvailableDays: 9}}
	payload, _ := json.Marshal(resp)
	cacheKey := "balances:" + userID + ":2026"

	t.Run("cache miss populates redis", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.ExpectSet(cacheKey, payload, 5*time.Minute).SetVal("OK")

		called := false
		svc := &fakeService{
			getUserBalancesFn: func(ctx context.Context, uid string, year int) ([]balance.BalanceResponse, error) {
				called = true
				assert.Equal(t, userID, uid)
				assert.Equal(t, 2026, year)
				return resp, nil
			},
		}
		h := balance.NewHandlerWithRedis(svc, rdb)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "userId", Value: userID}}
		c.Request = httptest.NewRequest(http.MethodGet, "/balances/users/"+userID+"?year=2026", nil)

		h.GetUserBalances(c)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "\"available_days\":9")
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips service", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		svc := &fakeService{
			getUserBalancesFn: func(ctx context.Context, uid string, year int) ([]balance.BalanceResponse, error) {
				t.Fatal("service must not be called on cache hit")
				return nil, nil
			},
		}
		h := balance.NewHandlerWithRedis(svc, rdb)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "userId", Value: userID}}
		c.Request = httptest.NewRequest(http.MethodGet, "/balances/users/"+userID+"?year=2026", nil)

		h.GetUserBalances(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestHandler_Adjust(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()
	typeID := uuid.New().String()

	t.Run("invalidates cache", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectDel("balances:" + userID + ":2026").SetVal(1)

		svc := &fakeService{
			adjustFn: func(ctx context.Context, uid, tid string, year int, delta float64, reason string) error {
				assert.Equal(t, userID, uid)
				assert.Equal(t, typeID, tid)
				assert.Equal(t, 2.5, delta)
				assert.Equal(t, "manual correction", reason)
				return nil
			},
		}
		h := balance.NewHandlerWithRedis(svc, rdb)

		body := `{"user_id":"` + userID + `","activity_type_id":"` + typeID + `","year":2026,"delta":2.5,"reason":"manual correction"}`
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/balances/adjust", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Adjust(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative missing reason", func(t *testing.T) {
		svc := &fakeService{
			adjustFn: func(ctx context.Context, uid, tid string, year int, delta float64, reason string) error {
				t.Fatal("service must not be called")
				return nil
			},
		}
		h := balance.NewHandler(svc)

		body := `{"user_id":"` + userID + `","activity_type_id":"` + typeID + `","year":2026,"delta":2.5}`
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/balances/adjust", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Adjust(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
