package access

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/logger"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/response"
	"github.com/datavault-fs/knowledge-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AccessUsecase
	validator *validator.Validator
}

func NewHandler(usecase AccessUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CheckAccess handles POST /access/check - evaluate a permission
func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CheckAccess")

	var req entity.AccessCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateAccessCheck(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.usecase.ValidateAccess(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, decision)
}

// GetAuditLog handles GET /access/audit - recent audit entries
func (h *Handler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetAuditLog")

	filter := entity.AuditLogFilter{
		UserID: r.URL.Query().Get("user_id"),
	}

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "start_date must be RFC3339")
			return
		}
		filter.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "end_date must be RFC3339")
			return
		}
		filter.EndDate = &t
	}

	entries, err := h.usecase.GetAuditLog(ctx, filter)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.AuditLogResponse{Entries: entries})
}

// CreateSession handles POST /sessions - open an authenticated session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	var req entity.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = r.RemoteAddr
	}

	if err := h.validator.ValidateCreateSession(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.usecase.CreateSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, entity.CreateSessionResponse{
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}

// GetSession handles GET /sessions/{id} - validate a session token
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetSession")
	sessionID := chi.URLParam(r, "id")

	session, err := h.usecase.ValidateSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// DeleteSession handles DELETE /sessions/{id} - invalidate a session
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DeleteSession")
	sessionID := chi.URLParam(r, "id")

	if err := h.usecase.InvalidateSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "access request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrUnknownRole), errors.Is(err, entity.ErrUnknownAction),
		errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrSessionExpired), errors.Is(err, entity.ErrSessionInactive):
		response.Error(w, http.StatusUnauthorized, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
