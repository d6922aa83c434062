package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/datavault-fs/knowledge-backend/internal/api/middleware"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/logger"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/response"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   SearchUsecase
	policy    AccessPolicy
	validator *validator.Validator
}

func NewHandler(usecase SearchUsecase, policy AccessPolicy, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		policy:    policy,
		validator: validator,
	}
}

// FederatedSearch handles POST /search - ask across accessible knowledge boxes
func (h *Handler) FederatedSearch(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "FederatedSearch")

	var req entity.FederatedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fillPrincipalFromSession(ctx, &req.Principal)

	if err := h.validator.ValidateFederatedSearch(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "running federated search",
		zap.String("user_id", req.Principal.UserID),
		zap.String("role", string(req.Principal.Role)),
	)

	result, err := h.usecase.FederatedAsk(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// CategorizedSearch handles POST /search/categorized - single box search with categories
func (h *Handler) CategorizedSearch(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CategorizedSearch")

	var req entity.CategorizedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateCategorizedSearch(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.usecase.CategorizedSearch(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, results)
}

// ListBoxes handles GET /search/boxes - knowledge boxes visible to the caller
func (h *Handler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListBoxes")

	role := entity.Role(r.URL.Query().Get("role"))
	region := entity.Region(r.URL.Query().Get("region"))

	if session, ok := middleware.SessionFromContext(ctx); ok && role == "" {
		role = session.UserRole
	}
	if role == "" {
		response.Error(w, http.StatusBadRequest, "role query parameter is required")
		return
	}
	if err := role.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	boxes := h.policy.AccessibleBoxes(role, region)

	response.Success(w, entity.ListBoxesResponse{
		Accessible: boxes,
		Role:       role,
		Region:     region,
	})
}

func fillPrincipalFromSession(ctx context.Context, principal *entity.Principal) {
	session, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return
	}
	if principal.UserID == "" {
		principal.UserID = session.UserID
	}
	if principal.Role == "" {
		principal.Role = session.UserRole
	}
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "search request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrUnknownRole), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNoAccessibleBoxes):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, entity.ErrKnowledgeBoxNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
