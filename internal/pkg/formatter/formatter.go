package formatter

import (
	"fmt"
	"strings"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type Formatter interface {
	Format(report *entity.Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ReportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func joinSources(sources []string) string {
	return strings.Join(sources, "; ")
}
