package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultKnowledgeBox = "global_research"
	snippetLength       = 200
)

// SearchUsecase implements federated and categorized search across the
// knowledge boxes a principal is allowed to query.
type SearchUsecase struct {
	boxes      map[string]string // logical name -> vendor kb id
	connector  VendorConnector
	policy     AccessPolicy
	queryCache *gocache.Cache
	usageRepo  repository.UsageRepository
	savingRepo repository.CostSavingRepository
	pricing    map[entity.OperationType]float64
	logger     *zap.Logger
}

func NewUsecase(
	boxes []entity.KnowledgeBox,
	connector VendorConnector,
	policy AccessPolicy,
	queryCache *gocache.Cache,
	usageRepo repository.UsageRepository,
	savingRepo repository.CostSavingRepository,
	pricing map[entity.OperationType]float64,
	logger *zap.Logger,
) *SearchUsecase {
	registry := make(map[string]string, len(boxes))
	for _, box := range boxes {
		registry[box.Name] = box.ID
	}

	return &SearchUsecase{
		boxes:      registry,
		connector:  connector,
		policy:     policy,
		queryCache: queryCache,
		usageRepo:  usageRepo,
		savingRepo: savingRepo,
		pricing:    pricing,
		logger:     logger,
	}
}

// FederatedAsk queries every accessible knowledge box in parallel and
// aggregates the answers into a single result with an executive summary.
func (uc *SearchUsecase) FederatedAsk(ctx context.Context, req *entity.FederatedSearchRequest) (*entity.FederatedResult, error) {
	if err := req.Principal.Role.Validate(); err != nil {
		return nil, err
	}

	accessible := uc.policy.AccessibleBoxes(req.Principal.Role, req.Principal.Region)
	if len(accessible) == 0 {
		return nil, entity.ErrNoAccessibleBoxes
	}

	ctxzap.Info(ctx, "starting federated search",
		zap.String("user_id", req.Principal.UserID),
		zap.String("role", string(req.Principal.Role)),
		zap.Strings("knowledge_boxes", accessible),
	)

	answers := make([]*entity.KnowledgeBoxAnswer, len(accessible))

	var wg sync.WaitGroup
	for i, name := range accessible {
		kbID, ok := uc.boxes[name]
		if !ok {
			ctxzap.Warn(ctx, "knowledge box missing from registry", zap.String("kb", name))
			continue
		}

		wg.Add(1)
		go func(i int, name, kbID string) {
			defer wg.Done()
			answers[i] = uc.askBox(ctx, name, kbID, req.Query, req.Principal.UserID)
		}(i, name, kbID)
	}
	wg.Wait()

	result := &entity.FederatedResult{
		Query:     req.Query,
		UserID:    req.Principal.UserID,
		Role:      req.Principal.Role,
		Timestamp: time.Now().UTC(),
	}

	for _, answer := range answers {
		if answer == nil {
			continue
		}
		result.Results = append(result.Results, *answer)
		result.TotalSources += len(answer.Sources)
	}

	result.Summary = buildExecutiveSummary(result.Results)

	ctxzap.Info(ctx, "federated search completed",
		zap.Int("kb_count", len(result.Results)),
		zap.Int("total_sources", result.TotalSources),
	)

	return result, nil
}

// askBox queries one knowledge box, serving from the query cache when
// possible. Per-box failures degrade to a nil answer rather than failing
// the whole federation.
func (uc *SearchUsecase) askBox(ctx context.Context, name, kbID, query, userID string) *entity.KnowledgeBoxAnswer {
	key := cacheKey(kbID, query)

	if cached, ok := uc.queryCache.Get(key); ok {
		answer := cached.(entity.KnowledgeBoxAnswer)
		answer.FromCache = true

		uc.recordSaving(ctx, "cache_hit", uc.pricing[entity.OpSearchQuery],
			fmt.Sprintf("Served from cache: %s", truncate(query, 50)))
		uc.recordUsage(ctx, entity.UsageRecord{
			Timestamp:           time.Now().UTC(),
			Operation:           entity.OpSearchQuery,
			Cost:                0,
			KnowledgeBoxID:      kbID,
			UserID:              userID,
			SavedByOptimization: true,
		})

		return &answer
	}

	res, err := uc.connector.Ask(ctx, kbID, query)
	if err != nil {
		ctxzap.Error(ctx, "knowledge box query failed",
			zap.String("kb", name),
			zap.Error(err),
		)
		return nil
	}

	answer := entity.KnowledgeBoxAnswer{
		KnowledgeBox: name,
		Answer:       res.Answer,
		Sources:      res.Sources,
	}

	uc.queryCache.SetDefault(key, answer)
	uc.recordUsage(ctx, entity.UsageRecord{
		Timestamp:      time.Now().UTC(),
		Operation:      entity.OpSearchQuery,
		Cost:           uc.pricing[entity.OpSearchQuery],
		KnowledgeBoxID: kbID,
		UserID:         userID,
	})

	return &answer
}

// CategorizedSearch runs a plain search on a single knowledge box and
// groups hits by document origin.
func (uc *SearchUsecase) CategorizedSearch(ctx context.Context, req *entity.CategorizedSearchRequest) (*entity.CategorizedResults, error) {
	boxName := req.KnowledgeBox
	if boxName == "" {
		boxName = defaultKnowledgeBox
	}

	kbID, ok := uc.boxes[boxName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrKnowledgeBoxNotFound, boxName)
	}

	resp, err := uc.connector.Search(ctx, kbID, req.Query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	uc.recordUsage(ctx, entity.UsageRecord{
		Timestamp:      time.Now().UTC(),
		Operation:      entity.OpSearchQuery,
		Cost:           uc.pricing[entity.OpSearchQuery],
		KnowledgeBoxID: kbID,
	})

	return categorize(resp), nil
}

// categorize maps each resource into news, compliance or general documents
// based on its title.
func categorize(resp *entity.SearchResponse) *entity.CategorizedResults {
	results := &entity.CategorizedResults{
		Documents:  []entity.SearchHit{},
		News:       []entity.SearchHit{},
		Compliance: []entity.SearchHit{},
		Total:      resp.Total,
	}

	for _, resource := range resp.Resources {
		hit := entity.SearchHit{
			Title:   resource.Title,
			Summary: firstSnippet(resource),
		}

		title := strings.ToLower(resource.Title)
		switch {
		case strings.Contains(title, "wsj.com") || strings.Contains(title, "marketwatch"):
			results.News = append(results.News, hit)
		case strings.Contains(title, "compliance") || strings.Contains(title, "sec"):
			results.Compliance = append(results.Compliance, hit)
		default:
			results.Documents = append(results.Documents, hit)
		}
	}

	return results
}

func firstSnippet(resource entity.SearchResource) string {
	for _, para := range resource.Paragraphs {
		if para.Text != "" {
			return truncate(para.Text, snippetLength) + "..."
		}
	}
	return ""
}

// buildExecutiveSummary combines per-box answers. A single answer passes
// through; multiple answers are previewed with a category label each.
func buildExecutiveSummary(results []entity.KnowledgeBoxAnswer) string {
	switch len(results) {
	case 0:
		return "No results found for your query."
	case 1:
		return results[0].Answer
	}

	parts := make([]string, 0, len(results))
	for _, result := range results {
		preview := truncate(result.Answer, snippetLength)
		if preview == "" {
			preview = "No data"
		}

		switch {
		case result.KnowledgeBox == "global_research":
			parts = append(parts, "Market Research: "+preview)
		case strings.Contains(result.KnowledgeBox, "compliance"):
			parts = append(parts, "Compliance Note: "+preview)
		case result.KnowledgeBox == "client_analytics":
			parts = append(parts, "Client Insights: "+preview)
		default:
			parts = append(parts, result.KnowledgeBox+": "+preview)
		}
	}

	return strings.Join(parts, " | ")
}

func (uc *SearchUsecase) recordUsage(ctx context.Context, record entity.UsageRecord) {
	if err := uc.usageRepo.Record(ctx, record); err != nil {
		ctxzap.Warn(ctx, "failed to record usage", zap.Error(err))
	}
}

func (uc *SearchUsecase) recordSaving(ctx context.Context, optimizationType string, amount float64, details string) {
	saving := entity.CostSaving{
		Timestamp:        time.Now().UTC(),
		OptimizationType: optimizationType,
		AmountSaved:      amount,
		Details:          details,
	}
	if err := uc.savingRepo.Record(ctx, saving); err != nil {
		ctxzap.Warn(ctx, "failed to record cost saving", zap.Error(err))
	}
}

func cacheKey(kbID, query string) string {
	sum := sha256.Sum256([]byte(kbID + "\x00" + query))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
