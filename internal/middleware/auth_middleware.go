package middleware

import (
	"errors"
	"fmt"
	"strings"

	autherrors "hr-backoffice/internal/auth/errors"
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/contextutil"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID     = "user_id"
	ContextEmployeeID = "employee_id"
	ContextCompanyID  = "company_id"
	ContextRole       = "role"
)

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}

// AuthMiddleware validates the bearer token (or access_token cookie) and
// stores the caller on both the gin and the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, autherrors.ErrTokenExpired)
				return
			}
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		if typ, _ := claims["typ"].(string); typ == "refresh" {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		actor := domain.Actor{}
		actor.UserID, _ = claims["user_id"].(string)
		actor.CompanyID, _ = claims["company_id"].(string)
		actor.EmployeeID, _ = claims["employee_id"].(string)
		actor.Role, _ = claims["role"].(string)

		if actor.UserID == "" || actor.CompanyID == "" || actor.EmployeeID == "" {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		c.Set(ContextUserID, actor.UserID)
		c.Set(ContextEmployeeID, actor.EmployeeID)
		c.Set(ContextCompanyID, actor.CompanyID)
		c.Set(ContextRole, actor.Role)
		c.Request = c.Request.WithContext(contextutil.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		for _, role := range allowedRoles {
			if strings.EqualFold(userRole, role) {
				c.Next()
				return
			}
		}

		abortWith(c, autherrors.ErrForbidden)
	}
}
