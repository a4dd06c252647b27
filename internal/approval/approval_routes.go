package approval

import (
	"leaveflow/internal/middleware"
	"leaveflow/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/requests/:requestId", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.GetChain)
		approvals.GET("/proxies", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.GetProxies)
		approvals.POST("/proxies", middleware.RBACAuthorize(rbacService, "approval", "delegate"), handler.CreateProxy)
		approvals.DELETE("/proxies/:id", middleware.RBACAuthorize(rbacService, "approval", "delegate"), handler.DeactivateProxy)
	}
}
