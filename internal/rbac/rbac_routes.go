package rbac

import (
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to be behind AuthMiddleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService Service) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
		admin := group.Group("", middleware.RoleMiddleware(domain.RoleSuperAdmin, domain.RoleOwner, domain.RoleAdmin))
		admin.GET("/roles", middleware.RBACAuthorize(rbacService, "role", "read"), handler.ListRoles)
		admin.GET("/permissions", middleware.RBACAuthorize(rbacService, "role", "read"), handler.ListPermissions)
	}
}
