package movement

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes expects r to be behind AuthMiddleware. Approval capability
// is checked by the service after the state check, so decision routes carry
// no RBAC middleware of their own.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	movements := r.Group("/movements")
	{
		movements.GET("", middleware.RBACAuthorize(rbacService, "movement", "read"), handler.GetAll)
		movements.GET("/:id", handler.GetByID)
		movements.POST("", middleware.RBACAuthorize(rbacService, "movement", "create"), middleware.Idempotency(rdb), handler.Create)
		movements.POST("/:id/approve", handler.Approve)
		movements.POST("/:id/reject", handler.Reject)
		movements.POST("/:id/cancel", handler.Cancel)
		movements.POST("/:id/complete", handler.Complete)
		movements.PATCH("/:id/remarks", handler.UpdateRemarks)
		movements.DELETE("/:id", handler.Delete)
	}
}
