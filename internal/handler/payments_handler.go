package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
	"github.com/noah-isme/course-backoffice/internal/service"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/response"
)

const defaultReviewLimit = 20

type reviewHistory interface {
	History(ctx context.Context, enrollmentID string, limit int) ([]models.PaymentReview, error)
}

// PaymentsHandler exposes the admin payments board.
type PaymentsHandler struct {
	consoles consoleRegistry
	reviews  reviewHistory
	exports  *service.ExportService
}

// NewPaymentsHandler constructs PaymentsHandler.
func NewPaymentsHandler(consoles consoleRegistry, reviews reviewHistory, exports *service.ExportService) *PaymentsHandler {
	return &PaymentsHandler{consoles: consoles, reviews: reviews, exports: exports}
}

// List godoc
// @Summary List enrollments with their payment status
// @Tags Payments
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Search text"
// @Param status query string false "all, pending, paid or failed"
// @Param sortBy query string false "date or amount"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /admin/payments [get]
func (h *PaymentsHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	board := h.consoles.Get(p).Board
	q := board.Query()
	if raw, exists := c.GetQuery("page"); exists {
		if page, err := strconv.Atoi(raw); err == nil {
			q.Page = page
		}
	}
	if raw, exists := c.GetQuery("limit"); exists {
		if limit, err := strconv.Atoi(raw); err == nil {
			q.Limit = limit
		}
	}
	if raw, exists := c.GetQuery("search"); exists {
		q.Search = raw
	}
	if raw, exists := c.GetQuery("status"); exists {
		q.Status = models.ParseStatusFilter(raw)
	}
	if raw, exists := c.GetQuery("sortBy"); exists {
		q.SortBy = models.SortField(raw)
	}
	if raw, exists := c.GetQuery("sortOrder"); exists {
		q.SortOrder = models.SortOrder(raw)
	}

	view, err := board.Load(c.Request.Context(), p.Token, q)
	writeBoard(c, view, err)
}

// Sort godoc
// @Summary Sort the payments list
// @Description Selecting the current field flips the order; a new field starts descending.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.SortRequest true "Sort field"
// @Success 200 {object} response.Envelope
// @Router /admin/payments/sort [post]
func (h *PaymentsHandler) Sort(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	view, err := h.consoles.Get(p).Board.ToggleSort(c.Request.Context(), p.Token, req.SortBy)
	writeBoard(c, view, err)
}

// Page godoc
// @Summary Jump to a page of the payments list
// @Tags Payments
// @Produce json
// @Param page path int true "Page number"
// @Success 200 {object} response.Envelope
// @Router /admin/payments/pages/{page} [get]
func (h *PaymentsHandler) Page(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		response.Error(c, appErrors.Validation("invalid page", map[string]string{"page": "must be a number"}))
		return
	}
	view, err := h.consoles.Get(p).Board.GoToPage(c.Request.Context(), p.Token, page)
	writeBoard(c, view, err)
}

// SetStatus godoc
// @Summary Review a payment
// @Description Pending payments can be marked paid or failed; paid and failed can switch to each other.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.SetPaymentStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/payments/{id}/status [put]
func (h *PaymentsHandler) SetStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	view, err := h.consoles.Get(p).Board.SetPaymentStatus(c.Request.Context(), p, c.Param("id"), req.PaymentStatus)
	writeBoard(c, view, err)
}

// Reviews godoc
// @Summary Payment review history
// @Tags Payments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /admin/payments/{id}/reviews [get]
func (h *PaymentsHandler) Reviews(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultReviewLimit)))
	if err != nil || limit <= 0 {
		limit = defaultReviewLimit
	}
	reviews, err := h.reviews.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reviews)
}

// Export godoc
// @Summary Export the payments list
// @Description Exports every row matching the current search, filter and sort.
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /admin/payments/export [get]
func (h *PaymentsHandler) Export(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Payments(c.Request.Context(), h.consoles.Get(p).Board, p.Token, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func writeBoard(c *gin.Context, view service.BoardView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if view.Stale {
		meta = map[string]interface{}{"stale": true}
	}
	response.JSON(c, http.StatusOK, view, view.Pagination, meta)
}
