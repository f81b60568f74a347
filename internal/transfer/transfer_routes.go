package transfer

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes expects r to be behind AuthMiddleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	transfers := r.Group("/transfers")
	{
		transfers.GET("", middleware.RBACAuthorize(rbacService, "transfer", "read"), handler.GetAll)
		transfers.GET("/:id", handler.GetByID)
		transfers.POST("", middleware.RBACAuthorize(rbacService, "transfer", "create"), middleware.Idempotency(rdb), handler.Create)
		transfers.POST("/:id/approve", handler.Approve)
		transfers.POST("/:id/reject", handler.Reject)
		transfers.POST("/:id/complete", handler.Complete)
		transfers.DELETE("/:id", handler.Delete)
	}
}
