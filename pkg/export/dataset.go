// Package export renders tabular datasets as CSV or PDF files.
package export

import "time"

// Column is one exported field. Width is a relative weight used by the PDF
// layout; zero counts as 1.
type Column struct {
	Key   string
	Title string
	Width float64
}

// Dataset is a titled table ready to render.
type Dataset struct {
	Title       string
	Columns     []Column
	Rows        []map[string]string
	GeneratedAt time.Time
}

func (d Dataset) headers() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Title
		if out[i] == "" {
			out[i] = col.Key
		}
	}
	return out
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = row[col.Key]
	}
	return out
}
