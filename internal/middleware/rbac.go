package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/service"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

// RBAC enforces the given roles. Roles are only checked when the token
// signature was verified locally; otherwise the backend decides.
func RBAC(authService *service.AuthService, allowed ...models.UserRole) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		roles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if !authService.Verifying() {
			c.Next()
			return
		}
		if _, ok := roles[principal.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only the configured admin role.
func RequireAdmin(authService *service.AuthService) gin.HandlerFunc {
	return RBAC(authService, authService.AdminRole())
}
