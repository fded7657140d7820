package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

type consoleCloser interface {
	End(p models.Principal)
}

// ConsoleHandler manages the caller's server-side console state.
type ConsoleHandler struct {
	consoles consoleCloser
}

// NewConsoleHandler constructs ConsoleHandler.
func NewConsoleHandler(consoles consoleCloser) *ConsoleHandler {
	return &ConsoleHandler{consoles: consoles}
}

// End godoc
// @Summary Discard the caller's console state
// @Description Drops the payments board, enrollment form and pending student search.
// @Tags Console
// @Success 204
// @Router /admin/console [delete]
func (h *ConsoleHandler) End(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	h.consoles.End(p)
	response.NoContent(c)
}
