package report

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to be behind AuthMiddleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	reports := r.Group("/reports")
	reports.Use(middleware.RBACAuthorize(rbacService, "report", "read"))
	{
		reports.GET("/:report", handler.Report)
		reports.GET("/:report/summary", handler.Summary)
		reports.GET("/:report/export", middleware.RBACAuthorize(rbacService, "report", "export"), handler.Export)
		reports.POST("/:report/export", middleware.RBACAuthorize(rbacService, "report", "export"), handler.RequestExport)
	}
}
