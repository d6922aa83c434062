package entity

import (
	"fmt"
	"time"
)

// OperationType classifies a billable vendor operation.
type OperationType string

const (
	OpEmbeddingGeneration OperationType = "embedding_generation"
	OpSearchQuery         OperationType = "search_query"
	OpDocumentStorage     OperationType = "document_storage"
	OpAPICall             OperationType = "api_call"
	OpOCRProcessing       OperationType = "ocr_processing"
	OpAudioTranscription  OperationType = "audio_transcription"
	OpLargeModelQuery     OperationType = "large_model_query"
	OpStandardModelQuery  OperationType = "standard_model_query"
)

func (o OperationType) Validate() error {
	switch o {
	case OpEmbeddingGeneration, OpSearchQuery, OpDocumentStorage, OpAPICall,
		OpOCRProcessing, OpAudioTranscription, OpLargeModelQuery, OpStandardModelQuery:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, o)
	}
}

// UsageRecord is one billable vendor operation.
type UsageRecord struct {
	ID                  int64         `json:"id"`
	Timestamp           time.Time     `json:"timestamp"`
	Operation           OperationType `json:"operation_type"`
	ResourceID          string        `json:"resource_id,omitempty"`
	Cost                float64       `json:"cost"`
	KnowledgeBoxID      string        `json:"kb_id,omitempty"`
	UserID              string        `json:"user_id,omitempty"`
	SavedByOptimization bool          `json:"saved_by_optimization"`
}

// UsageSummary aggregates recorded usage over a time window.
type UsageSummary struct {
	TotalCost        float64                   `json:"total_cost"`
	TotalOperations  int64                     `json:"total_operations"`
	TotalQueries     int64                     `json:"total_queries"`
	CostsByOperation map[OperationType]float64 `json:"costs_by_operation"`
}

type CostBreakdownItem struct {
	Cost       float64 `json:"cost"`
	Percentage float64 `json:"percentage"`
}

type OptimizationOpportunity struct {
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potential_savings"`
	Action           string  `json:"action"`
}

// UsageAnalysis is the full cost analysis with ranked recommendations.
type UsageAnalysis struct {
	Period           string                              `json:"period"`
	TotalCost        float64                             `json:"total_cost"`
	CostBreakdown    map[OperationType]CostBreakdownItem `json:"cost_breakdown"`
	Opportunities    []OptimizationOpportunity           `json:"optimization_opportunities"`
	PotentialSavings float64                             `json:"potential_savings"`
	Recommendations  []string                            `json:"recommendations"`
}

// DocumentMeta describes a document submitted for deduplication or
// indexing strategy selection.
type DocumentMeta struct {
	ID             string    `json:"id"`
	Content        string    `json:"content,omitempty"`
	Type           string    `json:"type,omitempty"`
	KnowledgeBoxID string    `json:"kb_id,omitempty"`
	CreatedAt      time.Time `json:"created_date,omitzero"`
	SizeBytes      int64     `json:"size_bytes,omitempty"`
}

type DuplicatePair struct {
	DocumentID  string `json:"document"`
	DuplicateOf string `json:"duplicate_of"`
}

type DedupReport struct {
	OriginalCount     int             `json:"original_count"`
	UniqueCount       int             `json:"unique_count"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
	CostSaved         float64         `json:"cost_saved"`
	Duplicates        []DuplicatePair `json:"duplicate_list"`
}

type DocumentHash struct {
	DocumentID     string    `json:"document_id"`
	ContentHash    string    `json:"content_hash"`
	KnowledgeBoxID string    `json:"kb_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CostSaving struct {
	ID               int64     `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	OptimizationType string    `json:"optimization_type"`
	AmountSaved      float64   `json:"amount_saved"`
	Details          string    `json:"details,omitempty"`
}

// IndexingStrategy is the recommended vendor-side processing policy for
// a single document.
type IndexingStrategy struct {
	Priority       string `json:"priority"`
	Vectorization  string `json:"vectorization"`
	EmbeddingModel string `json:"embedding_model"`
	ChunkSize      int    `json:"chunk_size"`
	CacheTTLHours  int    `json:"cache_ttl"`
}

// ROISnapshot captures operating metrics at one point in time.
type ROISnapshot struct {
	ResearchTimeHours  float64 `json:"avg_research_time_hours"`
	ComplianceAuditDay float64 `json:"compliance_audit_days"`
	ClientReportDays   float64 `json:"client_report_days"`
	MonthlyCost        float64 `json:"monthly_cost"`
}

// ROIMetrics are the improvements between a baseline and a current snapshot.
type ROIMetrics struct {
	TimeReductionPercent   float64 `json:"time_reduction_percent"`
	MonthlyCostSavings     float64 `json:"monthly_cost_savings"`
	ProductivityMultiplier float64 `json:"productivity_multiplier"`
	Baseline               ROISnapshot
	Current                ROISnapshot
}
