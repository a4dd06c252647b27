package user

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
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/:id", middleware.RBACAuthorize(rbacService, "user", "read"), handler.GetProfile)
		users.GET("/:id/managers", middleware.RBACAuthorize(rbacService, "user", "read"), handler.GetManagers)
		users.GET("/:id/subordinates", middleware.RBACAuthorize(rbacService, "user", "read"), handler.GetSubordinateTree)
		users.POST("/:id/managers", middleware.RBACAuthorize(rbacService, "user", "manage"), handler.AssignManager)
		users.DELETE("/:id/managers/:managerId", middleware.RBACAuthorize(rbacService, "user", "manage"), handler.RemoveManager)
	}
}
