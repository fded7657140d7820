package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/service"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/logger"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

// ContextPrincipalKey is the gin context key storing the caller.
const ContextPrincipalKey = "principal"

// JWT requires an access token, read from the Authorization header or,
// failing that, from the platform's auth cookie.
func JWT(authService *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c, cookieName)
		if err != nil {
			response.Error(c, err)
			return
		}

		principal, err := authService.Authenticate(token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextPrincipalKey, principal)
		if principal.UserID != "" {
			c.Set(logger.UserIDKey, principal.UserID)
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by JWT.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", appErrors.ErrUnauthorized
}
