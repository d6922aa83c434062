package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.Title)
	fmt.Fprintf(&buf, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	for _, section := range report.Sections {
		fmt.Fprintf(&buf, "## %s\n\n%s\n\n", section.Name, section.Content)

		if len(section.Sources) > 0 {
			fmt.Fprintf(&buf, "Sources (%d documents):\n\n", section.SourceCount)
			for _, src := range section.Sources {
				fmt.Fprintf(&buf, "- %s\n", src)
			}
			buf.WriteString("\n")
		}
	}

	fmt.Fprintf(&buf, "---\n\nSections: %d | Total sources analyzed: %d\n",
		report.Metrics.SectionsGenerated, report.Metrics.TotalSources)

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
