package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/pkg/pricing"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

type packageManager interface {
	List(ctx context.Context, token, query string, page int) ([]models.Package, *models.Pagination, error)
	Quote(ctx context.Context, token string, courseIDs []string, price models.PriceText) (pricing.Quote, error)
	EditForm(ctx context.Context, token, id string) (models.PackageForm, error)
	Create(ctx context.Context, token string, form models.PackageForm) (*models.Package, error)
	Update(ctx context.Context, token, id string, form models.PackageForm) (*models.Package, error)
	Delete(ctx context.Context, token, id string) error
}

// PackageHandler exposes package management.
type PackageHandler struct {
	packages packageManager
}

// NewPackageHandler constructs PackageHandler.
func NewPackageHandler(packages packageManager) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// List godoc
// @Summary List packages
// @Tags Packages
// @Produce json
// @Param q query string false "Matches name or description"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /admin/packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	packages, pagination, err := h.packages.List(c.Request.Context(), p.Token, c.Query("q"), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, packages, pagination)
}

// Quote godoc
// @Summary Preview package pricing
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body dto.QuoteRequest true "Courses and price"
// @Success 200 {object} response.Envelope
// @Router /admin/packages/quote [post]
func (h *PackageHandler) Quote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	quote, err := h.packages.Quote(c.Request.Context(), p.Token, req.Courses, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quote)
}

// Form godoc
// @Summary Edit form seeded from a package
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} response.Envelope
// @Router /admin/packages/{id}/form [get]
func (h *PackageHandler) Form(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	form, err := h.packages.EditForm(c.Request.Context(), p.Token, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// Create godoc
// @Summary Create package
// @Description Original price and discount are computed from the selected courses.
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body models.PackageForm true "Package"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var form models.PackageForm
	if err := c.ShouldBindJSON(&form); err != nil {
		invalidPayload(c, err)
		return
	}
	pkg, err := h.packages.Create(c.Request.Context(), p.Token, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pkg)
}

// Update godoc
// @Summary Update package
// @Tags Packages
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Param payload body models.PackageForm true "Package"
// @Success 200 {object} response.Envelope
// @Router /admin/packages/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var form models.PackageForm
	if err := c.ShouldBindJSON(&form); err != nil {
		invalidPayload(c, err)
		return
	}
	pkg, err := h.packages.Update(c.Request.Context(), p.Token, c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pkg)
}

// Delete godoc
// @Summary Delete package
// @Tags Packages
// @Param id path string true "Package ID"
// @Success 204
// @Router /admin/packages/{id} [delete]
func (h *PackageHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.packages.Delete(c.Request.Context(), p.Token, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
