package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 297.0
	pageMargin  = 10.0
	rowHeight   = 7.0
	maxCellRune = 28
)

// renderPDF writes the summary followed by every record as a table.
func renderPDF(def definition, c criteria, summary Summary, records []Record, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, def.title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Period: "+periodLabel(c))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %d", summary.Total))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, bucketLine(summary.Statuses))
	pdf.Ln(6)
	if len(summary.Categories) > 0 {
		pdf.Cell(0, 6, bucketLine(summary.Categories))
		pdf.Ln(6)
	}
	if line := metricLine(summary.Metrics); line != "" {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	width := (pageWidth - 2*pageMargin) / float64(len(def.headers))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range def.headers {
		pdf.CellFormat(width, rowHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, rec := range records {
		for _, cell := range rec.Cells() {
			pdf.CellFormat(width, rowHeight, truncate(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func periodLabel(c criteria) string {
	if c.from == nil && c.to == nil {
		return "all time"
	}
	from, to := "...", "..."
	if c.from != nil {
		from = c.from.Format(dateLayout)
	}
	if c.to != nil {
		to = c.to.AddDate(0, 0, -1).Format(dateLayout)
	}
	return from + " to " + to
}

func bucketLine(bs []Bucket) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, fmt.Sprintf("%s: %d (%d%%)", b.Key, b.Count, b.Percentage))
	}
	return strings.Join(parts, "   ")
}

func metricLine(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %.2f", name, metrics[name]))
	}
	return strings.Join(parts, "   ")
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRune {
		return s
	}
	return string(r[:maxCellRune-1]) + "~"
}
