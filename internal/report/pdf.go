package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/periphery-audit/internal/results"
)

const (
	pageMargin = 15.0
	rowHeight  = 6.0

	// cellPadding covers the left and right cell margins.
	cellPadding = 3.0
)

// findings table column widths in mm; they add up to the A4 text width.
var columnWidths = [3]float64{30, 60, 90}

// WritePDF renders env as an A4 document with a summary table followed by
// every finding. Failure envelopes produce a one-page error report.
func WritePDF(w io.Writer, env results.Envelope, title string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("periphery-audit", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin + 5)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if !env.Success {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(204, 51, 51)
		pdf.MultiCell(0, rowHeight, tr("Scan failed: "+env.Error), "", "L", false)
		return output(pdf, w)
	}

	summary := results.Summarize(env.Results)
	if env.Summary != nil {
		summary = *env.Summary
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Summary: %d unused", summary.TotalUnused), "", 1, "L", false, 0, "")
	header(pdf, []string{"Kind", "Count"}, []float64{60, 30})
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range KindCounts(summary) {
		pdf.CellFormat(60, rowHeight, tr(row.Kind), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, rowHeight, strconv.Itoa(row.Count), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	if len(env.Results) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, "No unused code found", "", 1, "L", false, 0, "")
		return output(pdf, w)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Findings", "", 1, "L", false, 0, "")
	header(pdf, []string{"Kind", "Name", "Location"}, columnWidths[:])
	pdf.SetFont("Helvetica", "", 8)
	for _, rec := range env.Results {
		cells := []string{rec.Kind, rec.Name, rec.Location}
		for i, text := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(columnWidths[i], rowHeight, fit(pdf, tr(text), columnWidths[i]), "1", ln, "L", false, 0, "")
		}
	}
	return output(pdf, w)
}

func header(pdf *gofpdf.Fpdf, labels []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, l := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight, l, "1", ln, "L", true, 0, "")
	}
}

// fit shortens already translated single-byte text with a trailing ".."
// until it fits in width mm.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - cellPadding
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"..") > limit {
		text = text[:len(text)-1]
	}
	return text + ".."
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
