package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

// EnrollmentHandler exposes the admin "add enrollment" dialog.
type EnrollmentHandler struct {
	consoles consoleRegistry
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(consoles consoleRegistry) *EnrollmentHandler {
	return &EnrollmentHandler{consoles: consoles}
}

// Form godoc
// @Summary Current enrollment form values
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/enrollment-form [get]
func (h *EnrollmentHandler) Form(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	response.OK(c, h.consoles.Get(p).EnrollmentForm.View())
}

// Patch godoc
// @Summary Change enrollment form fields
// @Description Selecting a course or package fills in its price unless a price was already typed.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollmentFormPatch true "Changed fields"
// @Success 200 {object} response.Envelope
// @Router /admin/enrollment-form [put]
func (h *EnrollmentHandler) Patch(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var patch dto.EnrollmentFormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidPayload(c, err)
		return
	}
	view, err := h.consoles.Get(p).EnrollmentForm.Apply(c.Request.Context(), p.Token, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Submit godoc
// @Summary Create the enrollment
// @Description On success the form is cleared and the new enrollment heads the payments list.
// @Tags Enrollments
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/enrollment-form/submit [post]
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	created, err := h.consoles.Get(p).EnrollmentForm.Submit(c.Request.Context(), p.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Reset godoc
// @Summary Clear the enrollment form
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/enrollment-form [delete]
func (h *EnrollmentHandler) Reset(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	response.OK(c, h.consoles.Get(p).EnrollmentForm.Reset())
}
