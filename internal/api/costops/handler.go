package costops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/logger"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/response"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   CostOpsUsecase
	validator *validator.Validator
}

func NewHandler(usecase CostOpsUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// AnalyzeUsage handles GET /costs/analysis - usage breakdown and opportunities
func (h *Handler) AnalyzeUsage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnalyzeUsage")

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	analysis, err := h.usecase.AnalyzeUsage(ctx, days)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, analysis)
}

// GetSavings handles GET /costs/savings - total recorded savings
func (h *Handler) GetSavings(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetSavings")

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	total, err := h.usecase.TotalSavings(ctx, days)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]float64{"total_savings": total})
}

// CalculateROI handles POST /costs/roi - baseline vs current comparison
func (h *Handler) CalculateROI(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CalculateROI")

	var req entity.ROIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateROI(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics, err := h.usecase.CalculateROI(req.Baseline, req.Current)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, metrics)
}

// DeduplicateDocuments handles POST /documents/dedup - dry-run deduplication
func (h *Handler) DeduplicateDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DeduplicateDocuments")

	req, ok := h.decodeDedupRequest(ctx, w, r)
	if !ok {
		return
	}

	_, report, err := h.usecase.Deduplicate(ctx, req.Documents)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, report)
}

// IndexDocuments handles POST /documents/index - dedup and upload the batch
func (h *Handler) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "IndexDocuments")

	req, ok := h.decodeDedupRequest(ctx, w, r)
	if !ok {
		return
	}

	ctxzap.Info(ctx, "indexing documents", zap.Int("count", len(req.Documents)))

	report, err := h.usecase.IndexDocuments(ctx, req.Documents)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, report)
}

// IndexingStrategy handles POST /documents/strategy - processing policy for a document
func (h *Handler) IndexingStrategy(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "IndexingStrategy")

	var doc entity.DocumentMeta
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if doc.ID == "" {
		response.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	response.Success(w, h.usecase.SelectIndexingStrategy(doc))
}

func (h *Handler) decodeDedupRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*entity.DedupRequest, bool) {
	var req entity.DedupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if err := h.validator.ValidateDedup(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return &req, true
}

func parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, true
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		response.Error(w, http.StatusBadRequest, "days must be a non-negative integer")
		return 0, false
	}

	return days, true
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "cost request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
