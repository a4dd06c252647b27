package activitytype

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
	types := r.Group("/activity-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "activity_type", "read"), handler.GetAll)
		types.GET("/:id", middleware.RBACAuthorize(rbacService, "activity_type", "read"), handler.GetById)
		types.POST("", middleware.RBACAuthorize(rbacService, "activity_type", "manage"), handler.Create)
		types.PUT("/:id", middleware.RBACAuthorize(rbacService, "activity_type", "manage"), handler.Update)
	}
}
