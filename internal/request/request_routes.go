package request

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

	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("/mine", middleware.RBACAuthorize(rbacService, "request", "read"), handler.GetMine)
		requests.GET("/team", middleware.RBACAuthorize(rbacService, "request", "read_team"), handler.GetTeam)
		requests.GET("/pending-approvals", middleware.RBACAuthorize(rbacService, "request", "decide"), handler.GetPendingApprovals)
		requests.GET("/calculate-days", middleware.RBACAuthorize(rbacService, "request", "read"), handler.CalculateDays)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "request", "read"), handler.GetById)
		requests.GET("/:id/comments", middleware.RBACAuthorize(rbacService, "request", "read"), handler.GetComments)

		if redisClient != nil {
			requests.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "request", "create"),
				handler.Create,
			)
		} else {
			requests.POST("", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Create)
		}
		requests.PUT("/:id", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Update)
		requests.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Submit)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Cancel)
		requests.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "request", "decide"), handler.Approve)
		requests.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "request", "decide"), handler.Reject)
		requests.POST("/:id/request-revision", middleware.RBACAuthorize(rbacService, "request", "decide"), handler.RequestRevision)
	}
}
