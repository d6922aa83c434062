package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/formatter"
	"github.com/datavault-fs/knowledge-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultReportType = "market_analysis"
	reportBox         = "global_research"
	maxSectionSources = 5

	unavailableContent = "No specific insights available."
)

// sectionPlan is the fixed outline of a generated market report.
var sectionPlan = []string{
	"Executive Summary",
	"Market Overview",
	"Risk Analysis",
	"Investment Opportunities",
	"Recommendations",
}

// VendorConnector is the part of the RAG vendor API report generation needs.
type VendorConnector interface {
	Ask(ctx context.Context, kbID, query string) (*entity.AskResult, error)
}

// ReportUsecase generates market intelligence reports section by section
// from the research knowledge box.
type ReportUsecase struct {
	boxes     map[string]string
	connector VendorConnector
	usageRepo repository.UsageRepository
	pricing   map[entity.OperationType]float64
	formats   *formatter.Factory
	logger    *zap.Logger
}

func NewUsecase(
	boxes []entity.KnowledgeBox,
	connector VendorConnector,
	usageRepo repository.UsageRepository,
	pricing map[entity.OperationType]float64,
	logger *zap.Logger,
) *ReportUsecase {
	registry := make(map[string]string, len(boxes))
	for _, box := range boxes {
		registry[box.Name] = box.ID
	}

	return &ReportUsecase{
		boxes:     registry,
		connector: connector,
		usageRepo: usageRepo,
		pricing:   pricing,
		formats:   formatter.NewFactory(),
		logger:    logger,
	}
}

// Generate builds a report by querying the knowledge box once per planned
// section. A failed section degrades to placeholder content instead of
// aborting the report.
func (uc *ReportUsecase) Generate(ctx context.Context, req *entity.GenerateReportRequest) (*entity.Report, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, entity.ErrEmptyTopic
	}

	reportType := req.ReportType
	if reportType == "" {
		reportType = defaultReportType
	}

	kbID, ok := uc.boxes[reportBox]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrKnowledgeBoxNotFound, reportBox)
	}

	ctxzap.Info(ctx, "generating report",
		zap.String("topic", req.Topic),
		zap.String("report_type", reportType),
	)

	report := &entity.Report{
		Title:       fmt.Sprintf("%s - %s", req.Topic, titleize(reportType)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, name := range sectionPlan {
		query := fmt.Sprintf("%s %s", req.Topic, strings.ToLower(name))

		section := entity.ReportSection{
			Name:  name,
			Query: query,
		}

		result, err := uc.connector.Ask(ctx, kbID, query)
		if err != nil {
			ctxzap.Warn(ctx, "section query failed",
				zap.String("section", name),
				zap.Error(err),
			)
			section.Content = unavailableContent
		} else {
			section.Content = result.Answer
			if section.Content == "" {
				section.Content = unavailableContent
			}
			section.SourceCount = len(result.Sources)
			for i, src := range result.Sources {
				if i == maxSectionSources {
					break
				}
				section.Sources = append(section.Sources, src.Title)
			}

			uc.recordUsage(ctx, kbID)
		}

		report.Sections = append(report.Sections, section)
		report.Metrics.TotalSources += section.SourceCount
	}

	report.Metrics.SectionsGenerated = len(report.Sections)

	ctxzap.Info(ctx, "report generated",
		zap.Int("sections", report.Metrics.SectionsGenerated),
		zap.Int("total_sources", report.Metrics.TotalSources),
	)

	return report, nil
}

// Export renders a report in the requested format. Returns the document
// bytes, content type and file extension.
func (uc *ReportUsecase) Export(report *entity.Report, format entity.ReportFormat) ([]byte, string, string, error) {
	f, err := uc.formats.Create(format)
	if err != nil {
		return nil, "", "", err
	}

	data, err := f.Format(report)
	if err != nil {
		return nil, "", "", fmt.Errorf("format report: %w", err)
	}

	return data, f.ContentType(), f.FileExtension(), nil
}

func (uc *ReportUsecase) recordUsage(ctx context.Context, kbID string) {
	record := entity.UsageRecord{
		Timestamp:      time.Now().UTC(),
		Operation:      entity.OpStandardModelQuery,
		Cost:           uc.pricing[entity.OpStandardModelQuery],
		KnowledgeBoxID: kbID,
	}
	if err := uc.usageRepo.Record(ctx, record); err != nil {
		ctxzap.Warn(ctx, "failed to record usage", zap.Error(err))
	}
}

// titleize turns snake_case identifiers like "market_analysis" into
// "Market Analysis".
func titleize(s string) string {
	words := strings.Split(s, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
