package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(report *entity.Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(report.Title)

	metaPar := doc.AddParagraph()
	metaPar.AddRun().AddText("Generated: " + report.GeneratedAt.Format(time.RFC3339))

	for _, section := range report.Sections {
		headingPar := doc.AddParagraph()
		headingPar.SetStyle("Heading2")
		headingPar.AddRun().AddText(section.Name)

		bodyPar := doc.AddParagraph()
		bodyPar.AddRun().AddText(section.Content)

		if len(section.Sources) > 0 {
			srcPar := doc.AddParagraph()
			srcPar.AddRun().AddText(
				fmt.Sprintf("Sources (%d documents): %s", section.SourceCount, joinSources(section.Sources)))
		}
	}

	footerPar := doc.AddParagraph()
	footerPar.AddRun().AddText(fmt.Sprintf("Sections: %d | Total sources analyzed: %d",
		report.Metrics.SectionsGenerated, report.Metrics.TotalSources))

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
