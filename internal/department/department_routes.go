package department

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
) {
	departments := r.Group("/departments")
	{
		departments.GET("",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "department", "read"),
			h.GetAll,
		)
		departments.GET("/tree",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "department", "read"),
			h.GetTree,
		)
		departments.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "department", "create"),
			h.Create,
		)
		departments.GET("/:id",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "department", "read"),
			h.GetById,
		)
		departments.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "department", "update"),
			h.Update,
		)
		departments.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "department", "delete"),
			h.Delete,
		)
	}
}
