package balance

import (
	"leaveflow/internal/middleware"
	"leaveflow/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/users/:userId", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetUserBalances)
		balances.GET("/users/:userId/types/:activityTypeId", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetBalance)
		balances.POST("/initialize", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Initialize)
		if redisClient != nil {
			balances.POST(
				"/adjust",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "balance", "manage"),
				handler.Adjust,
			)
		} else {
			balances.POST("/adjust", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Adjust)
		}
		balances.POST("/carry-over", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.ProcessCarryOver)
	}
}
