package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/logger"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/response"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ReportUsecase
	validator *validator.Validator
}

func NewHandler(usecase ReportUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// GenerateReport handles POST /reports - build a research report
//
// The format query parameter selects the export: json (default) returns the
// report body, markdown/pdf/docx return a downloadable document.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateReport")

	var req entity.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateGenerateReport(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" || formatParam == "json" {
		report, err := h.usecase.Generate(ctx, &req)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
		response.Success(w, report)
		return
	}

	format := entity.ReportFormat(formatParam)
	if err := format.Validate(); err != nil {
		ctxzap.Warn(ctx, "invalid format parameter", zap.String("format", formatParam))
		response.Error(w, http.StatusBadRequest, "format must be one of: json, markdown, pdf, docx")
		return
	}

	ctxzap.Info(ctx, "generating report",
		zap.String("topic", req.Topic),
		zap.String("format", formatParam),
	)

	report, err := h.usecase.Generate(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	data, contentType, extension, err := h.usecase.Export(report, format)
	if err != nil {
		ctxzap.Error(ctx, "failed to export report", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to export report")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", reportFilename(req.Topic)+extension))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func reportFilename(topic string) string {
	name := strings.ToLower(strings.TrimSpace(topic))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "report"
	}
	return name
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "report request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrEmptyTopic), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrUnsupportedFormat):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
