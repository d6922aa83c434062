package costops

import (
	"context"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type CostOpsUsecase interface {
	AnalyzeUsage(ctx context.Context, timeframeDays int) (*entity.UsageAnalysis, error)
	TotalSavings(ctx context.Context, timeframeDays int) (float64, error)
	CalculateROI(baseline, current entity.ROISnapshot) (*entity.ROIMetrics, error)
	Deduplicate(ctx context.Context, documents []entity.DocumentMeta) ([]entity.DocumentMeta, *entity.DedupReport, error)
	IndexDocuments(ctx context.Context, documents []entity.DocumentMeta) (*entity.DedupReport, error)
	SelectIndexingStrategy(document entity.DocumentMeta) entity.IndexingStrategy
}
