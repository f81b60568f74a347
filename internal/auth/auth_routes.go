package auth

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts login and refresh on public and the rest on
// protected, which must already run AuthMiddleware.
func RegisterRoutes(public, protected *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	open := public.Group("/auth")
	{
		open.POST("/login", middleware.RateLimitByIP(0.1, 5), handler.Login)
		open.POST("/refresh", middleware.RateLimitByIP(0.5, 5), handler.RefreshToken)
		open.POST("/logout", handler.Logout)
	}

	auth := protected.Group("/auth")
	{
		auth.GET("/me", middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/register", middleware.RateLimitByUser(0.5, 2), middleware.RBACAuthorize(rbacService, "user", "create"), handler.Register)
	}
}
