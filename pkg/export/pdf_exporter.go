package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfContentWidth = 190.0

// PDFExporter renders documents into a basic sectioned PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderDocument creates a PDF document with a title, subtitle lines, and one table per section.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if len(doc.Subtitles) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, line := range doc.Subtitles {
			pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf section %q requires at least one header", section.Heading)
		}
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		}

		colWidth := pdfContentWidth / float64(len(section.Data.Headers))
		pdf.SetFont("Arial", "B", 9)
		for _, header := range section.Data.Headers {
			pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range section.Data.Rows {
			for _, header := range section.Data.Headers {
				pdf.CellFormat(colWidth, 6, tr(truncate(row[header], colWidth)), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate keeps long free-text cells inside their column at the 8pt body font.
func truncate(value string, width float64) string {
	limit := int(width * 0.625)
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
