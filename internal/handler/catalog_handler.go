package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

type courseSearcher interface {
	SearchCourses(ctx context.Context, token, query string) ([]models.Course, error)
}

// CatalogHandler serves the admin pickers: courses and students.
type CatalogHandler struct {
	courses  courseSearcher
	consoles consoleRegistry
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(courses courseSearcher, consoles consoleRegistry) *CatalogHandler {
	return &CatalogHandler{courses: courses, consoles: consoles}
}

// Courses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /admin/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courses, err := h.courses.SearchCourses(c.Request.Context(), p.Token, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses)
}

// Students godoc
// @Summary Search students
// @Description Lookups wait for a quiet period; a request overtaken by newer input answers 204.
// @Tags Catalog
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Success 204
// @Router /admin/students/search [get]
func (h *CatalogHandler) Students(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	students, err := h.consoles.Get(p).Students.Query(c.Request.Context(), p.Token, c.Query("q"))
	switch {
	case errors.Is(err, appErrors.ErrSuperseded), errors.Is(err, context.Canceled):
		response.NoContent(c)
		return
	case err != nil:
		response.Error(c, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	response.OK(c, students)
}
