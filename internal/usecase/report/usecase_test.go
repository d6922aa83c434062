package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

var testBoxes = []entity.KnowledgeBox{
	{Name: "global_research", ID: "kb_research"},
}

type fakeConnector struct {
	queries []string
	failOn  string
}

func (f *fakeConnector) Ask(_ context.Context, _, query string) (*entity.AskResult, error) {
	f.queries = append(f.queries, query)

	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("vendor timeout")
	}
	return &entity.AskResult{
		Answer: "Insights for: " + query,
		Sources: []entity.Source{
			{Title: "Source A", ID: "a"},
			{Title: "Source B", ID: "b"},
		},
	}, nil
}

type memUsageRepo struct {
	records []entity.UsageRecord
}

func (m *memUsageRepo) Record(_ context.Context, record entity.UsageRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memUsageRepo) Summarize(context.Context, time.Time) (*entity.UsageSummary, error) {
	return &entity.UsageSummary{}, nil
}

func newTestUsecase(connector *fakeConnector, usage *memUsageRepo) *ReportUsecase {
	pricing := map[entity.OperationType]float64{
		entity.OpStandardModelQuery: 0.002,
	}
	return NewUsecase(testBoxes, connector, usage, pricing, zap.NewNop())
}

func TestGenerateBuildsAllSections(t *testing.T) {
	connector := &fakeConnector{}
	usage := &memUsageRepo{}
	uc := newTestUsecase(connector, usage)

	report, err := uc.Generate(context.Background(), &entity.GenerateReportRequest{
		Topic: "Technology Sector",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Title != "Technology Sector - Market Analysis" {
		t.Errorf("title = %q", report.Title)
	}

	var names []string
	for _, section := range report.Sections {
		names = append(names, section.Name)
	}
	want := []string{"Executive Summary", "Market Overview", "Risk Analysis", "Investment Opportunities", "Recommendations"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	if report.Metrics.SectionsGenerated != 5 {
		t.Errorf("sections generated = %d, want 5", report.Metrics.SectionsGenerated)
	}
	if report.Metrics.TotalSources != 10 {
		t.Errorf("total sources = %d, want 10", report.Metrics.TotalSources)
	}

	// One vendor query per section, lowercased section name appended.
	if len(connector.queries) != 5 {
		t.Fatalf("expected 5 queries, got %d", len(connector.queries))
	}
	if connector.queries[0] != "Technology Sector executive summary" {
		t.Errorf("query = %q", connector.queries[0])
	}

	// One billed model query per successful section.
	if len(usage.records) != 5 {
		t.Errorf("expected 5 usage records, got %d", len(usage.records))
	}
}

func TestGenerateFailedSectionDegrades(t *testing.T) {
	connector := &fakeConnector{failOn: "risk analysis"}
	usage := &memUsageRepo{}
	uc := newTestUsecase(connector, usage)

	report, err := uc.Generate(context.Background(), &entity.GenerateReportRequest{
		Topic: "Energy",
	})
	if err != nil {
		t.Fatalf("a failed section must not abort the report: %v", err)
	}

	var risk *entity.ReportSection
	for i := range report.Sections {
		if report.Sections[i].Name == "Risk Analysis" {
			risk = &report.Sections[i]
		}
	}
	if risk == nil {
		t.Fatal("Risk Analysis section missing")
	}
	if risk.Content != "No specific insights available." {
		t.Errorf("failed section content = %q", risk.Content)
	}
	if risk.SourceCount != 0 {
		t.Errorf("failed section should have no sources, got %d", risk.SourceCount)
	}

	// Failed section is not billed.
	if len(usage.records) != 4 {
		t.Errorf("expected 4 usage records, got %d", len(usage.records))
	}
}

func TestGenerateRejectsEmptyTopic(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, &memUsageRepo{})

	_, err := uc.Generate(context.Background(), &entity.GenerateReportRequest{Topic: "   "})
	if !errors.Is(err, entity.ErrEmptyTopic) {
		t.Errorf("expected ErrEmptyTopic, got %v", err)
	}
}

func TestGenerateCustomReportType(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, &memUsageRepo{})

	report, err := uc.Generate(context.Background(), &entity.GenerateReportRequest{
		Topic:      "Healthcare",
		ReportType: "compliance_review",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Title != "Healthcare - Compliance Review" {
		t.Errorf("title = %q", report.Title)
	}
}

func TestExportMarkdown(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, &memUsageRepo{})

	report, err := uc.Generate(context.Background(), &entity.GenerateReportRequest{Topic: "Retail"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, contentType, extension, err := uc.Export(report, entity.FormatMarkdown)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if extension != ".md" {
		t.Errorf("extension = %q", extension)
	}
	if !strings.HasPrefix(contentType, "text/markdown") {
		t.Errorf("content type = %q", contentType)
	}

	body := string(data)
	if !strings.Contains(body, "# Retail - Market Analysis") {
		t.Errorf("markdown missing title:\n%s", body)
	}
	if !strings.Contains(body, "## Risk Analysis") {
		t.Errorf("markdown missing section heading:\n%s", body)
	}
	if !strings.Contains(body, "- Source A") {
		t.Errorf("markdown missing source list:\n%s", body)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, &memUsageRepo{})

	if _, _, _, err := uc.Export(&entity.Report{}, entity.ReportFormat("csv")); err == nil {
		t.Error("expected an error for unsupported format")
	}
}

func TestTitleize(t *testing.T) {
	tests := map[string]string{
		"market_analysis":   "Market Analysis",
		"compliance_review": "Compliance Review",
		"weekly":            "Weekly",
	}
	for in, want := range tests {
		if got := titleize(in); got != want {
			t.Errorf("titleize(%q) = %q, want %q", in, got, want)
		}
	}
}
