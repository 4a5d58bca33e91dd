package render

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"

	"github.com/zeitbericht/zeitbericht/pkg/report"
)

// Column widths in mm; together they fill an A4 page inside default margins.
var pdfColumns = []float64{100, 35, 30, 25}

// PDF lays the selection out as a paginated document: header band with
// company name and logo, a title line naming the covered period, the row
// table and a totals row. Page breaks are left to the layout engine.
func PDF(sel report.Selection, opts Options) ([]byte, error) {
	lb := labelsFor(opts.Language)
	period := report.PeriodLabel(sel.Rows, opts.Language)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(report.Filename(sel), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header band: company name left, logo right.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(150, 12, tr(opts.CompanyName), "", 0, "L", false, 0, "")
	if opts.LogoPath != "" {
		pdf.ImageOptions(opts.LogoPath, 170, 10, 28, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(190, 8, tr(period), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Table header.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(236, 240, 241)
	header := []string{lb.description, lb.task, lb.date, lb.hours}
	for i, title := range header {
		align := "L"
		if i == len(header)-1 {
			align = "R"
		}
		pdf.CellFormat(pdfColumns[i], 8, tr(title), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range sel.Rows {
		writePDFRow(pdf, tr, row.Description, row.TaskName, row.Start.Format(lb.dateLayout), FormatHours(row.DurationHours, opts.Language))
	}
	if sel.Manual != nil {
		writePDFRow(pdf, tr, sel.Manual.Description, "", "", FormatHours(sel.Manual.DurationHours, opts.Language))
	}

	// Totals row: the exact sum of everything rendered above.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pdfColumns[0]+pdfColumns[1]+pdfColumns[2], 8, tr(lb.total), "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfColumns[3], 8, FormatHours(sel.TotalHours(), opts.Language), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePDFRow(pdf *gofpdf.Fpdf, tr func(string) string, description, task, date, hours string) {
	pdf.CellFormat(pdfColumns[0], 7, tr(clip(description, 64)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[1], 7, tr(clip(task, 22)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[2], 7, date, "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[3], 7, hours, "1", 1, "R", false, 0, "")
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
