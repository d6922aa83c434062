package report

import (
	"context"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type ReportUsecase interface {
	Generate(ctx context.Context, req *entity.GenerateReportRequest) (*entity.Report, error)
	Export(report *entity.Report, format entity.ReportFormat) ([]byte, string, string, error)
}
