package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/simplydispatch/driverslog/internal/timeline"
)

// pdfFont is a core PDF font; the log sheet is ASCII-safe, so no font
// embedding is needed.
const pdfFont = "Helvetica"

// WritePDF renders the timeline as a single-page daily log sheet and
// returns the PDF bytes. generatedAt is printed in the header so a
// driver can tell a reprint from the original.
func WritePDF(tripNumber string, tl timeline.Timeline, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 10, "Daily Trip Log", "", 1, "C", false, 0, "")

	pdf.SetFont(pdfFont, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Trip %s", dash(tripNumber)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", generatedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Activity", "Time", "Location", "Quantity", "Notes"}
	colWidths := []float64{40, 35, 55, 20, 30}
	drawTableRow(pdf, headers, colWidths, true)

	for _, row := range tl.Rows {
		drawTableRow(pdf, []string{
			dash(row.Label),
			dash(row.TimeDisplay),
			dash(row.Location),
			row.QuantityDisplay,
			row.Notes,
		}, colWidths, false)
	}

	if tl.NeedsFinish {
		pdf.Ln(2)
		pdf.SetFont(pdfFont, "I", 10)
		pdf.CellFormat(0, 6, "Trip in progress: no finish recorded yet.", "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont(pdfFont, "", 11)
	pdf.CellFormat(0, 6, "Driver signature: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export.WritePDF: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(pdfFont, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
