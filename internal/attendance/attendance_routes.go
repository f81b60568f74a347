package attendance

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	attendance := r.Group("/attendance")
	{
		attendance.GET("",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "attendance", "read"),
			h.List,
		)
		attendance.GET("/:id",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "attendance", "read"),
			h.GetByID,
		)
		attendance.POST("/check-in",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.CheckIn,
		)
		attendance.POST("/check-out",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			h.CheckOut,
		)
		attendance.POST("/manual",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "manage"),
			h.RecordManual,
		)
	}
}
