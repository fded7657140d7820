package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/middleware"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/service"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

type consoleRegistry interface {
	Get(p models.Principal) *service.ConsoleSession
}

// principal returns the caller or answers 401 and reports false.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Principal{}, false
	}
	return p, true
}

func invalidPayload(c *gin.Context, err error) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
}
