package balance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"leaveflow/internal/shared/apperror"
	"leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const balanceCacheTTL = 5 * time.Minute

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func userBalancesCacheKey(userID string, year int) string {
	return fmt.Sprintf("balances:%s:%d", userID, year)
}

func yearParam(c *gin.Context) int {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil {
		return time.Now().Year()
	}
	return year
}

func (h *Handler) GetUserBalances(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userId")
	year := yearParam(c)

	cacheKey := userBalancesCacheKey(userID, year)
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp []BalanceResponse
			if json.Unmarshal(cached, &resp) == nil {
				response.Success(c, http.StatusOK, resp, nil)
				return
			}
		}
	}

	resp, err := h.service.GetUserBalances(ctx, userID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
			_ = h.rdb.Set(ctx, cacheKey, payload, balanceCacheTTL).Err()
		}
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBalance(c *gin.Context) {
	resp, err := h.service.GetBalance(c.Request.Context(), c.Param("userId"), c.Param("activityTypeId"), yearParam(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Initialize(c *gin.Context) {
	var req InitializeBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}

	row, err := h.service.Initialize(c.Request.Context(), req.UserID, req.ActivityTypeID, req.Year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidate(c, req.UserID, req.Year)
	response.Success(c, http.StatusCreated, mapToResponse(*row), nil)
}

func (h *Handler) Adjust(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}

	if err := h.service.Adjust(c.Request.Context(), req.UserID, req.ActivityTypeID, req.Year, req.Delta, req.Reason); err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidate(c, req.UserID, req.Year)
	response.Success(c, http.StatusOK, gin.H{"adjusted": true}, nil)
}

func (h *Handler) ProcessCarryOver(c *gin.Context) {
	var req CarryOverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, err.Error())
		return
	}

	if err := h.service.ProcessCarryOver(c.Request.Context(), req.UserID, req.FromYear); err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidate(c, req.UserID, req.FromYear)
	h.invalidate(c, req.UserID, req.FromYear+1)
	response.Success(c, http.StatusOK, gin.H{"processed": true}, nil)
}

func (h *Handler) invalidate(c *gin.Context, userID string, year int) {
	if h.rdb == nil {
		return
	}
	_ = h.rdb.Del(c.Request.Context(), userBalancesCacheKey(userID, year)).Err()
}
