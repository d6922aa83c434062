package costops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

var testPricing = map[entity.OperationType]float64{
	entity.OpEmbeddingGeneration: 0.5,
	entity.OpSearchQuery:         0.05,
	entity.OpDocumentStorage:     0.02,
	entity.OpLargeModelQuery:     0.1,
	entity.OpStandardModelQuery:  0.02,
	entity.OpAPICall:             0.001,
}

type fakeUsageRepo struct {
	summary entity.UsageSummary
	records []entity.UsageRecord
}

func (f *fakeUsageRepo) Record(_ context.Context, record entity.UsageRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeUsageRepo) Summarize(context.Context, time.Time) (*entity.UsageSummary, error) {
	summary := f.summary
	return &summary, nil
}

type fakeHashRepo struct {
	known  map[string]string
	stored []entity.DocumentHash
}

func (f *fakeHashRepo) Store(_ context.Context, hash entity.DocumentHash) error {
	f.stored = append(f.stored, hash)
	return nil
}

func (f *fakeHashRepo) FindByContentHash(_ context.Context, contentHash string) (string, error) {
	return f.known[contentHash], nil
}

func (f *fakeHashRepo) TouchAccess(context.Context, string) error { return nil }

type fakeSavingRepo struct {
	savings []entity.CostSaving
	total   float64
}

func (f *fakeSavingRepo) Record(_ context.Context, saving entity.CostSaving) error {
	f.savings = append(f.savings, saving)
	return nil
}

func (f *fakeSavingRepo) TotalSince(context.Context, time.Time) (float64, error) {
	return f.total, nil
}

type upload struct {
	kbID     string
	filename string
	content  string
}

type fakeUploader struct {
	uploads []upload
	failID  string
}

func (f *fakeUploader) UploadResource(_ context.Context, kbID, filename string, content []byte) error {
	if f.failID != "" && filename == f.failID+".txt" {
		return errors.New("upload rejected")
	}
	f.uploads = append(f.uploads, upload{kbID: kbID, filename: filename, content: string(content)})
	return nil
}

type testDeps struct {
	usage  *fakeUsageRepo
	hashes *fakeHashRepo
	saving *fakeSavingRepo
	vendor *fakeUploader
}

func newTestUsecase() (*CostOpsUsecase, *testDeps) {
	deps := &testDeps{
		usage:  &fakeUsageRepo{},
		hashes: &fakeHashRepo{known: make(map[string]string)},
		saving: &fakeSavingRepo{},
		vendor: &fakeUploader{},
	}
	uc := NewUsecase(deps.usage, deps.hashes, deps.saving, deps.vendor, testPricing, zap.NewNop())
	return uc, deps
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 0.01
}

func TestAnalyzeUsageEmptyTableUsesRepresentativeFigures(t *testing.T) {
	uc, _ := newTestUsecase()

	analysis, err := uc.AnalyzeUsage(context.Background(), 30)
	if err != nil {
		t.Fatalf("AnalyzeUsage: %v", err)
	}

	if analysis.Period != "Last 30 days" {
		t.Errorf("period = %q", analysis.Period)
	}
	if analysis.TotalCost != 8500 {
		t.Errorf("total cost = %v, want 8500", analysis.TotalCost)
	}

	embedding := analysis.CostBreakdown[entity.OpEmbeddingGeneration]
	if embedding.Cost != 2500 {
		t.Errorf("embedding cost = %v, want 2500", embedding.Cost)
	}
	if !approx(embedding.Percentage, 2500.0/8500.0*100) {
		t.Errorf("embedding percentage = %v", embedding.Percentage)
	}
}

func TestAnalyzeUsageOpportunityMath(t *testing.T) {
	uc, _ := newTestUsecase()

	analysis, err := uc.AnalyzeUsage(context.Background(), 0)
	if err != nil {
		t.Fatalf("AnalyzeUsage: %v", err)
	}
	if analysis.Period != "Last 30 days" {
		t.Errorf("zero timeframe should fall back to the default, got %q", analysis.Period)
	}

	byType := make(map[string]entity.OptimizationOpportunity, len(analysis.Opportunities))
	for _, opp := range analysis.Opportunities {
		byType[opp.Type] = opp
	}
	if len(byType) != 4 {
		t.Fatalf("expected 4 opportunity types, got %d", len(byType))
	}

	// 2500 duplicates at the embedding price.
	if got := byType["deduplication"].PotentialSavings; !approx(got, 1250) {
		t.Errorf("deduplication savings = %v, want 1250", got)
	}
	// 15000 unused documents, a year of monthly storage.
	if got := byType["archival"].PotentialSavings; !approx(got, 3600) {
		t.Errorf("archival savings = %v, want 3600", got)
	}
	// 80% of 35000 repeated queries at the search price.
	if got := byType["caching"].PotentialSavings; !approx(got, 1400) {
		t.Errorf("caching savings = %v, want 1400", got)
	}
	// 30% of 50000 queries moved from the large to the standard model.
	if got := byType["model_selection"].PotentialSavings; !approx(got, 1200) {
		t.Errorf("model selection savings = %v, want 1200", got)
	}

	if !approx(analysis.PotentialSavings, 7450) {
		t.Errorf("total potential savings = %v, want 7450", analysis.PotentialSavings)
	}
}

func TestAnalyzeUsageRecommendationsRanked(t *testing.T) {
	uc, _ := newTestUsecase()

	analysis, err := uc.AnalyzeUsage(context.Background(), 30)
	if err != nil {
		t.Fatalf("AnalyzeUsage: %v", err)
	}

	want := []string{
		fmt.Sprintf("Implement all optimizations to save $%.2f/month", analysis.PotentialSavings),
		"1. Move to cold storage or archive (save $3600.00)",
		"2. Implement intelligent query caching (save $1400.00)",
		"3. Implement content hashing before embedding (save $1250.00)",
	}
	if diff := cmp.Diff(want, analysis.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeUsagePrefersRecordedFigures(t *testing.T) {
	uc, deps := newTestUsecase()
	deps.usage.summary = entity.UsageSummary{
		TotalCost:    200,
		TotalQueries: 100,
		CostsByOperation: map[entity.OperationType]float64{
			entity.OpSearchQuery: 200,
		},
	}

	analysis, err := uc.AnalyzeUsage(context.Background(), 7)
	if err != nil {
		t.Fatalf("AnalyzeUsage: %v", err)
	}
	if analysis.Period != "Last 7 days" {
		t.Errorf("period = %q", analysis.Period)
	}
	if analysis.TotalCost != 200 {
		t.Errorf("total cost = %v, want 200", analysis.TotalCost)
	}
	if got := analysis.CostBreakdown[entity.OpSearchQuery].Percentage; !approx(got, 100) {
		t.Errorf("search percentage = %v, want 100", got)
	}
}

func TestDeduplicateFiltersBatchAndStoredDuplicates(t *testing.T) {
	uc, deps := newTestUsecase()
	deps.hashes.known[hashContent("quarterly filing")] = "stored-doc"

	docs := []entity.DocumentMeta{
		{ID: "doc1", Content: "merger announcement", KnowledgeBoxID: "kb1"},
		{ID: "doc2", Content: "merger announcement", KnowledgeBoxID: "kb1"},
		{ID: "doc3", Content: "quarterly filing", KnowledgeBoxID: "kb1"},
		{ID: "doc4", Content: "rate decision", KnowledgeBoxID: "kb1"},
	}

	unique, report, err := uc.Deduplicate(context.Background(), docs)
	if err != nil {
		t.Fatalf("Deduplicate: %v", err)
	}

	var ids []string
	for _, doc := range unique {
		ids = append(ids, doc.ID)
	}
	if diff := cmp.Diff([]string{"doc1", "doc4"}, ids); diff != "" {
		t.Errorf("unique documents mismatch (-want +got):\n%s", diff)
	}

	if report.OriginalCount != 4 || report.UniqueCount != 2 || report.DuplicatesRemoved != 2 {
		t.Errorf("report counts = %d/%d/%d", report.OriginalCount, report.UniqueCount, report.DuplicatesRemoved)
	}
	if !approx(report.CostSaved, 1.0) {
		t.Errorf("cost saved = %v, want 1.0", report.CostSaved)
	}

	wantPairs := []entity.DuplicatePair{
		{DocumentID: "doc2", DuplicateOf: "doc1"},
		{DocumentID: "doc3", DuplicateOf: "stored-doc"},
	}
	if diff := cmp.Diff(wantPairs, report.Duplicates); diff != "" {
		t.Errorf("duplicate pairs mismatch (-want +got):\n%s", diff)
	}

	if len(deps.saving.savings) != 1 {
		t.Fatalf("expected 1 saving record, got %d", len(deps.saving.savings))
	}
	saving := deps.saving.savings[0]
	if saving.OptimizationType != "deduplication" {
		t.Errorf("saving type = %q", saving.OptimizationType)
	}
	if saving.Details != "Prevented 2 duplicate embeddings" {
		t.Errorf("saving details = %q", saving.Details)
	}

	// Hashes are only stored for the kept documents.
	if len(deps.hashes.stored) != 2 {
		t.Errorf("expected 2 stored hashes, got %d", len(deps.hashes.stored))
	}
}

func TestDeduplicateKeepsReindexedDocument(t *testing.T) {
	uc, deps := newTestUsecase()
	deps.hashes.known[hashContent("same content")] = "doc1"

	unique, report, err := uc.Deduplicate(context.Background(), []entity.DocumentMeta{
		{ID: "doc1", Content: "same content"},
	})
	if err != nil {
		t.Fatalf("Deduplicate: %v", err)
	}
	if len(unique) != 1 || report.DuplicatesRemoved != 0 {
		t.Errorf("re-indexing the original must not count as a duplicate")
	}
	if len(deps.saving.savings) != 0 {
		t.Errorf("no savings should be recorded without duplicates")
	}
}

func TestDeduplicateCapsReportedPairs(t *testing.T) {
	uc, _ := newTestUsecase()

	docs := []entity.DocumentMeta{{ID: "origin", Content: "repeated body"}}
	for i := 0; i < 12; i++ {
		docs = append(docs, entity.DocumentMeta{
			ID:      fmt.Sprintf("copy%d", i),
			Content: "repeated body",
		})
	}

	_, report, err := uc.Deduplicate(context.Background(), docs)
	if err != nil {
		t.Fatalf("Deduplicate: %v", err)
	}
	if report.DuplicatesRemoved != 12 {
		t.Errorf("duplicates removed = %d, want 12", report.DuplicatesRemoved)
	}
	if len(report.Duplicates) != 10 {
		t.Errorf("reported pairs = %d, want 10", len(report.Duplicates))
	}
}

func TestIndexDocumentsUploadsUniqueAndTracksCosts(t *testing.T) {
	uc, deps := newTestUsecase()
	deps.vendor.failID = "doc2"

	docs := []entity.DocumentMeta{
		{ID: "doc1", Content: "alpha", KnowledgeBoxID: "kb1"},
		{ID: "doc2", Content: "beta", KnowledgeBoxID: "kb1"},
		{ID: "doc3", Content: "alpha", KnowledgeBoxID: "kb1"},
	}

	report, err := uc.IndexDocuments(context.Background(), docs)
	if err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if report.UniqueCount != 2 {
		t.Errorf("unique count = %d, want 2", report.UniqueCount)
	}

	if len(deps.vendor.uploads) != 1 {
		t.Fatalf("expected 1 successful upload, got %d", len(deps.vendor.uploads))
	}
	got := deps.vendor.uploads[0]
	if got.filename != "doc1.txt" || got.kbID != "kb1" || got.content != "alpha" {
		t.Errorf("upload = %+v", got)
	}

	// Embedding plus storage for the uploaded document only.
	if len(deps.usage.records) != 2 {
		t.Fatalf("expected 2 usage records, got %d", len(deps.usage.records))
	}
	ops := map[entity.OperationType]bool{}
	for _, record := range deps.usage.records {
		ops[record.Operation] = true
		if record.ResourceID != "doc1" {
			t.Errorf("usage tracked for %q, want doc1", record.ResourceID)
		}
	}
	if !ops[entity.OpEmbeddingGeneration] || !ops[entity.OpDocumentStorage] {
		t.Errorf("operations recorded = %v", ops)
	}
}

func TestSelectIndexingStrategy(t *testing.T) {
	uc, _ := newTestUsecase()
	now := time.Now()

	tests := []struct {
		name string
		doc  entity.DocumentMeta
		want entity.IndexingStrategy
	}{
		{
			name: "fresh document",
			doc:  entity.DocumentMeta{CreatedAt: now.AddDate(0, 0, -1)},
			want: entity.IndexingStrategy{Priority: "high", Vectorization: "immediate", EmbeddingModel: "large", ChunkSize: 512, CacheTTLHours: 48},
		},
		{
			name: "month old document",
			doc:  entity.DocumentMeta{CreatedAt: now.AddDate(0, 0, -30)},
			want: entity.IndexingStrategy{Priority: "standard", Vectorization: "batch", EmbeddingModel: "standard", ChunkSize: 1024, CacheTTLHours: 24},
		},
		{
			name: "stale document",
			doc:  entity.DocumentMeta{CreatedAt: now.AddDate(0, 0, -200)},
			want: entity.IndexingStrategy{Priority: "archive", Vectorization: "lazy", EmbeddingModel: "efficient", ChunkSize: 2048, CacheTTLHours: 12},
		},
		{
			name: "old earnings report is urgent",
			doc:  entity.DocumentMeta{CreatedAt: now.AddDate(0, 0, -200), Type: "Earnings Call"},
			want: entity.IndexingStrategy{Priority: "high", Vectorization: "immediate", EmbeddingModel: "efficient", ChunkSize: 2048, CacheTTLHours: 12},
		},
		{
			name: "large fresh document",
			doc:  entity.DocumentMeta{CreatedAt: now.AddDate(0, 0, -1), SizeBytes: 15_000_000},
			want: entity.IndexingStrategy{Priority: "high", Vectorization: "immediate", EmbeddingModel: "efficient", ChunkSize: 2048, CacheTTLHours: 48},
		},
		{
			name: "unknown age",
			doc:  entity.DocumentMeta{},
			want: entity.IndexingStrategy{Priority: "standard", Vectorization: "batch", EmbeddingModel: "standard", ChunkSize: 1024, CacheTTLHours: 24},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := uc.SelectIndexingStrategy(tc.doc)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("strategy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculateROI(t *testing.T) {
	uc, _ := newTestUsecase()

	baseline := entity.ROISnapshot{ResearchTimeHours: 4, ComplianceAuditDay: 14, ClientReportDays: 3, MonthlyCost: 180000}
	current := entity.ROISnapshot{ResearchTimeHours: 0.5, ComplianceAuditDay: 1, ClientReportDays: 0.5, MonthlyCost: 50000}

	metrics, err := uc.CalculateROI(baseline, current)
	if err != nil {
		t.Fatalf("CalculateROI: %v", err)
	}
	if !approx(metrics.TimeReductionPercent, 87.5) {
		t.Errorf("time reduction = %v, want 87.5", metrics.TimeReductionPercent)
	}
	if !approx(metrics.MonthlyCostSavings, 130000) {
		t.Errorf("monthly savings = %v, want 130000", metrics.MonthlyCostSavings)
	}
	if !approx(metrics.ProductivityMultiplier, 8) {
		t.Errorf("productivity multiplier = %v, want 8", metrics.ProductivityMultiplier)
	}
}

func TestCalculateROIRejectsNonPositiveTime(t *testing.T) {
	uc, _ := newTestUsecase()

	_, err := uc.CalculateROI(entity.ROISnapshot{}, entity.ROISnapshot{ResearchTimeHours: 1})
	if !errors.Is(err, entity.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	_, err = uc.CalculateROI(entity.ROISnapshot{ResearchTimeHours: 1}, entity.ROISnapshot{})
	if !errors.Is(err, entity.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestTotalSavings(t *testing.T) {
	uc, deps := newTestUsecase()
	deps.saving.total = 42.5

	total, err := uc.TotalSavings(context.Background(), 30)
	if err != nil {
		t.Fatalf("TotalSavings: %v", err)
	}
	if total != 42.5 {
		t.Errorf("total = %v, want 42.5", total)
	}
}
