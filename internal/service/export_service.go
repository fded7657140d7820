package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice/internal/models"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/export"
)

// ExportFormat selects the file type of an export.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type paymentsCollector interface {
	Collect(ctx context.Context, token string, maxRows int) ([]models.Enrollment, error)
	Query() models.PageQuery
}

// ExportFile is a rendered export ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders the payments list as a file.
type ExportService struct {
	csv     csvRenderer
	pdf     pdfRenderer
	maxRows int
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the
// defaults from pkg/export.
func NewExportService(maxRows int, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, maxRows: maxRows, logger: logger, now: time.Now}
}

// ParseExportFormat defaults to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Validation("unsupported export format", map[string]string{"format": "use csv or pdf"})
}

// Payments exports every enrollment matching the board's current filters.
func (s *ExportService) Payments(ctx context.Context, board paymentsCollector, token string, format ExportFormat) (*ExportFile, error) {
	rows, err := board.Collect(ctx, token, s.maxRows)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	dataset := PaymentsDataset(rows, board.Query(), now)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Validation("unsupported export format", map[string]string{"format": "use csv or pdf"})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("payments exported", zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("payments_%s.%s", now.Format("20060102_150405"), format),
		ContentType: contentType,
		Data:        payload,
		Rows:        len(rows),
	}, nil
}

// PaymentsDataset lays enrollments out as export rows.
func PaymentsDataset(rows []models.Enrollment, q models.PageQuery, generatedAt time.Time) export.Dataset {
	title := "Payments"
	if q.Status != "" && q.Status != models.StatusFilterAll {
		title += " (" + string(q.Status) + ")"
	}
	if q.Search != "" {
		title += " matching \"" + q.Search + "\""
	}
	dataset := export.Dataset{
		Title: title,
		Columns: []export.Column{
			{Key: "date", Title: "Date", Width: 1.2},
			{Key: "student", Title: "Student", Width: 1.6},
			{Key: "email", Title: "Email", Width: 2},
			{Key: "phone", Title: "Phone", Width: 1.3},
			{Key: "item", Title: "Item", Width: 2},
			{Key: "kind", Title: "Type", Width: 0.8},
			{Key: "price", Title: "Price", Width: 0.8},
			{Key: "status", Title: "Status", Width: 0.8},
		},
		Rows:        make([]map[string]string, 0, len(rows)),
		GeneratedAt: generatedAt,
	}
	for _, e := range rows {
		date := e.CreatedAt
		if ts := e.CreatedTime(); !ts.IsZero() {
			date = ts.UTC().Format("2006-01-02 15:04")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":    date,
			"student": e.StudentName,
			"email":   e.StudentEmail,
			"phone":   e.StudentPhone,
			"item":    e.ItemName,
			"kind":    string(e.Kind()),
			"price":   strconv.FormatFloat(e.Price, 'f', -1, 64),
			"status":  string(e.PaymentStatus.Effective()),
		})
	}
	return dataset
}
