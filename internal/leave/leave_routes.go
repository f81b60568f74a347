package leave

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Approve and reject check the approval capability inside the service after
// the state check.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	leaves := r.Group("/leaves")
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("", middleware.RateLimitByUser(0.5, 2), middleware.RBACAuthorize(rbacService, "leave", "create"), handler.Create)
		leaves.PUT("/:id", handler.Update)
		leaves.POST("/:id/approve", handler.Approve)
		leaves.POST("/:id/reject", handler.Reject)
		leaves.DELETE("/:id", handler.Delete)
	}
}
