package middleware

import (
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
)

// CurrentActor returns the caller set by AuthMiddleware. Handlers mounted
// behind AuthMiddleware always get a populated actor.
func CurrentActor(c *gin.Context) domain.Actor {
	if actor, ok := contextutil.GetActor(c.Request.Context()); ok {
		return actor
	}
	return domain.Actor{
		UserID:     c.GetString(ContextUserID),
		EmployeeID: c.GetString(ContextEmployeeID),
		CompanyID:  c.GetString(ContextCompanyID),
		Role:       c.GetString(ContextRole),
	}
}
