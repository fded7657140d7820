package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin       = 10.0
	landscapeColumn = 6
)

// PDFExporter renders datasets into a paged table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays the dataset out as a table, repeating the header row on each
// page. Wide tables switch to landscape.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	orientation := "P"
	if len(data.Columns) >= landscapeColumn {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(data.Columns, pageWidth-2*pdfMargin)
	headers := data.headers()

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, title := range headers {
			pdf.CellFormat(widths[i], 8, tr(latin1(title)), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	footer := fmt.Sprintf("%d rows", len(data.Rows))
	if !data.GeneratedAt.IsZero() {
		footer += " - generated " + data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s - page %d", footer, pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(latin1(data.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-15 {
			pdf.AddPage()
			header()
		}
		for i, value := range data.record(row) {
			pdf.CellFormat(widths[i], 7, tr(latin1(value)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column, total float64) []float64 {
	sum := 0.0
	for _, col := range columns {
		sum += weight(col)
	}
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = total * weight(col) / sum
	}
	return widths
}

func weight(col Column) float64 {
	if col.Width <= 0 {
		return 1
	}
	return col.Width
}

// latin1 replaces runes the core PDF fonts cannot draw.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxLatin1 {
			return '?'
		}
		return r
	}, s)
}
