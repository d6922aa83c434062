package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var testBoxes = []entity.KnowledgeBox{
	{Name: "global_research", ID: "kb_research"},
	{Name: "us_compliance", ID: "kb_us"},
	{Name: "eu_compliance", ID: "kb_eu"},
	{Name: "client_analytics", ID: "kb_client"},
	{Name: "internal_training", ID: "kb_training"},
}

var testPricing = map[entity.OperationType]float64{
	entity.OpSearchQuery: 0.001,
}

type fakeConnector struct {
	mu       sync.Mutex
	askCalls []string
	askErr   map[string]error
	searchFn func(kbID string) *entity.SearchResponse
}

func (f *fakeConnector) Ask(_ context.Context, kbID, query string) (*entity.AskResult, error) {
	f.mu.Lock()
	f.askCalls = append(f.askCalls, kbID)
	f.mu.Unlock()

	if err := f.askErr[kbID]; err != nil {
		return nil, err
	}
	return &entity.AskResult{
		Answer:  fmt.Sprintf("answer from %s", kbID),
		Sources: []entity.Source{{Title: "doc " + kbID, ID: "id-" + kbID}},
	}, nil
}

func (f *fakeConnector) Search(_ context.Context, kbID, _ string) (*entity.SearchResponse, error) {
	if f.searchFn == nil {
		return &entity.SearchResponse{}, nil
	}
	return f.searchFn(kbID), nil
}

type staticPolicy struct {
	boxes []string
}

func (p staticPolicy) AccessibleBoxes(entity.Role, entity.Region) []string {
	return p.boxes
}

type memUsageRepo struct {
	mu      sync.Mutex
	records []entity.UsageRecord
}

func (m *memUsageRepo) Record(_ context.Context, record entity.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *memUsageRepo) Summarize(context.Context, time.Time) (*entity.UsageSummary, error) {
	return &entity.UsageSummary{}, nil
}

type memSavingRepo struct {
	mu      sync.Mutex
	savings []entity.CostSaving
}

func (m *memSavingRepo) Record(_ context.Context, saving entity.CostSaving) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savings = append(m.savings, saving)
	return nil
}

func (m *memSavingRepo) TotalSince(context.Context, time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, s := range m.savings {
		total += s.AmountSaved
	}
	return total, nil
}

func newTestUsecase(connector *fakeConnector, policy AccessPolicy, usage *memUsageRepo, saving *memSavingRepo) *SearchUsecase {
	return NewUsecase(
		testBoxes,
		connector,
		policy,
		gocache.New(time.Minute, time.Minute),
		usage,
		saving,
		testPricing,
		zap.NewNop(),
	)
}

func TestFederatedAskPreservesBoxOrder(t *testing.T) {
	connector := &fakeConnector{}
	uc := newTestUsecase(connector,
		staticPolicy{boxes: []string{"global_research", "us_compliance", "client_analytics"}},
		&memUsageRepo{}, &memSavingRepo{})

	result, err := uc.FederatedAsk(context.Background(), &entity.FederatedSearchRequest{
		Query: "rate outlook",
		Principal: entity.Principal{
			UserID: "u1",
			Role:   entity.RoleExecutive,
		},
	})
	if err != nil {
		t.Fatalf("FederatedAsk: %v", err)
	}

	var order []string
	for _, answer := range result.Results {
		order = append(order, answer.KnowledgeBox)
	}
	want := []string{"global_research", "us_compliance", "client_analytics"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("answers out of order (-want +got):\n%s", diff)
	}
	if result.TotalSources != 3 {
		t.Errorf("total sources = %d, want 3", result.TotalSources)
	}
}

func TestFederatedAskRejectsUnknownRole(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, staticPolicy{}, &memUsageRepo{}, &memSavingRepo{})

	_, err := uc.FederatedAsk(context.Background(), &entity.FederatedSearchRequest{
		Query:     "q",
		Principal: entity.Principal{UserID: "u1", Role: entity.Role("superuser")},
	})
	if !errors.Is(err, entity.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestFederatedAskNoAccessibleBoxes(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, staticPolicy{boxes: nil}, &memUsageRepo{}, &memSavingRepo{})

	_, err := uc.FederatedAsk(context.Background(), &entity.FederatedSearchRequest{
		Query:     "q",
		Principal: entity.Principal{UserID: "u1", Role: entity.RoleAnalyst},
	})
	if !errors.Is(err, entity.ErrNoAccessibleBoxes) {
		t.Errorf("expected ErrNoAccessibleBoxes, got %v", err)
	}
}

func TestFederatedAskSurvivesBoxFailure(t *testing.T) {
	connector := &fakeConnector{
		askErr: map[string]error{"kb_us": errors.New("vendor down")},
	}
	uc := newTestUsecase(connector,
		staticPolicy{boxes: []string{"global_research", "us_compliance"}},
		&memUsageRepo{}, &memSavingRepo{})

	result, err := uc.FederatedAsk(context.Background(), &entity.FederatedSearchRequest{
		Query:     "q",
		Principal: entity.Principal{UserID: "u1", Role: entity.RoleExecutive},
	})
	if err != nil {
		t.Fatalf("one failing box must not fail the federation: %v", err)
	}

	if len(result.Results) != 1 || result.Results[0].KnowledgeBox != "global_research" {
		t.Errorf("expected only the healthy box in results: %+v", result.Results)
	}
}

func TestFederatedAskUsesCacheOnRepeat(t *testing.T) {
	connector := &fakeConnector{}
	usage := &memUsageRepo{}
	saving := &memSavingRepo{}
	uc := newTestUsecase(connector, staticPolicy{boxes: []string{"global_research"}}, usage, saving)

	req := &entity.FederatedSearchRequest{
		Query:     "repeated question",
		Principal: entity.Principal{UserID: "u1", Role: entity.RoleAnalyst},
	}

	first, err := uc.FederatedAsk(context.Background(), req)
	if err != nil {
		t.Fatalf("first ask: %v", err)
	}
	if first.Results[0].FromCache {
		t.Error("first answer must not come from cache")
	}

	second, err := uc.FederatedAsk(context.Background(), req)
	if err != nil {
		t.Fatalf("second ask: %v", err)
	}
	if !second.Results[0].FromCache {
		t.Error("second answer should come from cache")
	}

	if got := len(connector.askCalls); got != 1 {
		t.Errorf("vendor should be asked once, got %d calls", got)
	}

	if len(saving.savings) != 1 || saving.savings[0].OptimizationType != "cache_hit" {
		t.Errorf("cache hit should record a saving: %+v", saving.savings)
	}

	// The cached query still lands in usage tracking at zero cost.
	var cachedRecords int
	for _, r := range usage.records {
		if r.SavedByOptimization {
			cachedRecords++
			if r.Cost != 0 {
				t.Errorf("cached query should cost nothing, got %f", r.Cost)
			}
		}
	}
	if cachedRecords != 1 {
		t.Errorf("expected 1 zero-cost usage record, got %d", cachedRecords)
	}
}

func TestCategorizedSearchGroupsByTitle(t *testing.T) {
	connector := &fakeConnector{
		searchFn: func(string) *entity.SearchResponse {
			return &entity.SearchResponse{
				Total: 3,
				Resources: map[string]entity.SearchResource{
					"r1": {
						Title: "WSJ.com - Federal Reserve Signals Rate Path",
						Paragraphs: map[string]entity.SearchParagraph{
							"p1": {Text: "The Federal Reserve signaled a pause."},
						},
					},
					"r2": {Title: "SEC Compliance Update 2024"},
					"r3": {Title: "Q3 Market Analysis Report"},
				},
			}
		},
	}
	uc := newTestUsecase(connector, staticPolicy{}, &memUsageRepo{}, &memSavingRepo{})

	results, err := uc.CategorizedSearch(context.Background(), &entity.CategorizedSearchRequest{Query: "fed"})
	if err != nil {
		t.Fatalf("CategorizedSearch: %v", err)
	}

	if len(results.News) != 1 || len(results.Compliance) != 1 || len(results.Documents) != 1 {
		t.Errorf("unexpected grouping: news=%d compliance=%d documents=%d",
			len(results.News), len(results.Compliance), len(results.Documents))
	}
	if results.Total != 3 {
		t.Errorf("total = %d, want 3", results.Total)
	}
	if !strings.HasSuffix(results.News[0].Summary, "...") {
		t.Errorf("snippet should be suffixed, got %q", results.News[0].Summary)
	}
}

func TestCategorizedSearchUnknownBox(t *testing.T) {
	uc := newTestUsecase(&fakeConnector{}, staticPolicy{}, &memUsageRepo{}, &memSavingRepo{})

	_, err := uc.CategorizedSearch(context.Background(), &entity.CategorizedSearchRequest{
		Query:        "q",
		KnowledgeBox: "nonexistent",
	})
	if !errors.Is(err, entity.ErrKnowledgeBoxNotFound) {
		t.Errorf("expected ErrKnowledgeBoxNotFound, got %v", err)
	}
}

func TestBuildExecutiveSummary(t *testing.T) {
	tests := []struct {
		name    string
		results []entity.KnowledgeBoxAnswer
		want    string
	}{
		{
			name:    "no results",
			results: nil,
			want:    "No results found for your query.",
		},
		{
			name: "single answer passes through",
			results: []entity.KnowledgeBoxAnswer{
				{KnowledgeBox: "global_research", Answer: "Markets are up."},
			},
			want: "Markets are up.",
		},
		{
			name: "multiple answers are labeled",
			results: []entity.KnowledgeBoxAnswer{
				{KnowledgeBox: "global_research", Answer: "Markets are up."},
				{KnowledgeBox: "us_compliance", Answer: "New filing rules."},
				{KnowledgeBox: "client_analytics", Answer: "Clients are cautious."},
			},
			want: "Market Research: Markets are up. | Compliance Note: New filing rules. | Client Insights: Clients are cautious.",
		},
		{
			name: "empty answer becomes no data",
			results: []entity.KnowledgeBoxAnswer{
				{KnowledgeBox: "global_research", Answer: "Markets are up."},
				{KnowledgeBox: "internal_training", Answer: ""},
			},
			want: "Market Research: Markets are up. | internal_training: No data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildExecutiveSummary(tt.results); got != tt.want {
				t.Errorf("buildExecutiveSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
