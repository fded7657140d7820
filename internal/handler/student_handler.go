package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/service"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

type studentPortal interface {
	Checkout(ctx context.Context, p models.Principal, id string) (*service.CheckoutView, error)
	Claim(ctx context.Context, p models.Principal, id string, req dto.ClaimRequest) (*service.ClaimReceipt, error)
	Dashboard(ctx context.Context, p models.Principal) (models.StudentEnrollments, error)
}

type itemResolver interface {
	Resolve(ctx context.Context, token, id string) (*models.CatalogItem, error)
}

// StudentHandler exposes the student self-service endpoints.
type StudentHandler struct {
	students studentPortal
	catalog  itemResolver
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentPortal, catalog itemResolver) *StudentHandler {
	return &StudentHandler{students: students, catalog: catalog}
}

// Item godoc
// @Summary Resolve a catalog item
// @Description The id is looked up as a package first, then as a course.
// @Tags Student
// @Produce json
// @Param id path string true "Package or course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/items/{id} [get]
func (h *StudentHandler) Item(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	item, err := h.catalog.Resolve(c.Request.Context(), p.Token, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Checkout godoc
// @Summary Checkout page data
// @Tags Student
// @Produce json
// @Param id path string true "Package or course ID"
// @Success 200 {object} response.Envelope
// @Router /checkout/{id} [get]
func (h *StudentHandler) Checkout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.students.Checkout(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Claim godoc
// @Summary Claim a transfer payment
// @Description Records a pending enrollment at the item's price for an admin to review.
// @Tags Student
// @Accept json
// @Produce json
// @Param id path string true "Package or course ID"
// @Param payload body dto.ClaimRequest true "Sender phone number"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /checkout/{id}/claim [post]
func (h *StudentHandler) Claim(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	receipt, err := h.students.Claim(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Enrollments godoc
// @Summary The caller's courses and packages
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/enrollments [get]
func (h *StudentHandler) Enrollments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.students.Dashboard(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
