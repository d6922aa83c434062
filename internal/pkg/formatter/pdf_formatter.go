package formatter

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	// In Docker runtime we copy fonts to /app/ttf,
	// so for the compiled binary the path is ./ttf/DejaVuSans.ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}

	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}

	return ""
}

func (pf *PDFFormatter) Format(report *entity.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Try to use UTF-8 capable DejaVuSans font, bundled with the project.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		// Register regular and bold styles under the same family name
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 10, report.Title, "", "", false)
	pdf.Ln(2)

	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, "Generated: "+report.GeneratedAt.Format(time.RFC3339))
	pdf.Ln(10)

	_, lineHeight := pdf.GetFontSize()

	for _, section := range report.Sections {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, section.Name)
		pdf.Ln(10)

		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight*1.5, section.Content, "", "", false)
		pdf.Ln(2)

		if len(section.Sources) > 0 {
			pdf.SetFont(fontName, "", 9)
			pdf.MultiCell(0, lineHeight*1.4,
				fmt.Sprintf("Sources (%d documents): %s", section.SourceCount, joinSources(section.Sources)),
				"", "", false)
			pdf.Ln(2)
		}
	}

	pdf.SetFont(fontName, "", 9)
	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Sections: %d | Total sources analyzed: %d",
		report.Metrics.SectionsGenerated, report.Metrics.TotalSources))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
