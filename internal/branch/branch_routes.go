package branch

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	branches := r.Group("/branches")
	{
		branches.GET("",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "branch", "read"),
			handler.GetAll,
		)
		branches.GET("/:id",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "branch", "read"),
			handler.GetByID,
		)
		branches.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "branch", "create"),
			handler.Create,
		)
		branches.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "branch", "update"),
			handler.Update,
		)
		branches.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "branch", "delete"),
			handler.Delete,
		)
	}
}
