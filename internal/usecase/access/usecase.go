package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const auditLogLimit = 100

// AccessUsecase implements role-based access control with audit logging
// and session management.
type AccessUsecase struct {
	auditRepo   repository.AuditRepository
	sessionRepo repository.AccessSessionRepository
	sessionTTL  time.Duration
	logger      *zap.Logger
}

func NewUsecase(
	auditRepo repository.AuditRepository,
	sessionRepo repository.AccessSessionRepository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AccessUsecase {
	return &AccessUsecase{
		auditRepo:   auditRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// ValidateAccess checks whether the user may perform the action on the
// resource. Every check, allowed or not, lands in the audit trail.
func (uc *AccessUsecase) ValidateAccess(ctx context.Context, req *entity.AccessCheckRequest) (*entity.AccessDecision, error) {
	role := req.Role
	if role == "" {
		role = entity.RoleEmployee
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if err := req.Action.Validate(); err != nil {
		return nil, err
	}

	allowed, reason := decide(role, req.Action, req.Resource)

	decision := &entity.AccessDecision{
		Allowed:   allowed,
		UserID:    req.UserID,
		Role:      role,
		Action:    req.Action,
		Resource:  req.Resource,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}

	entry := entity.AuditEntry{
		Timestamp: decision.Timestamp,
		UserID:    req.UserID,
		UserRole:  role,
		Action:    req.Action,
		Resource:  req.Resource,
		Allowed:   allowed,
		Details:   reason,
	}
	if err := uc.auditRepo.Append(ctx, entry); err != nil {
		// The decision stands even when the audit write fails; the failure
		// itself is logged for operators.
		ctxzap.Error(ctx, "failed to append audit entry", zap.Error(err))
	}

	ctxzap.Info(ctx, "access decision",
		zap.String("user_id", req.UserID),
		zap.String("role", string(role)),
		zap.String("action", string(req.Action)),
		zap.String("resource", req.Resource),
		zap.Bool("allowed", allowed),
	)

	return decision, nil
}

// CreateSession opens an authenticated session with a fixed lifetime.
func (uc *AccessUsecase) CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.AccessSession, error) {
	if err := req.Role.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := entity.AccessSession{
		ID:        sessionID(req.UserID, now),
		UserID:    req.UserID,
		UserRole:  req.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
		IPAddress: req.IPAddress,
		Active:    true,
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session created",
		zap.String("user_id", req.UserID),
		zap.String("role", string(req.Role)),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &session, nil
}

// ValidateSession resolves a session token to an active session. Expired
// sessions are invalidated on first sight.
func (uc *AccessUsecase) ValidateSession(ctx context.Context, id string) (*entity.AccessSession, error) {
	session, err := uc.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		if err := uc.sessionRepo.Invalidate(ctx, id); err != nil {
			ctxzap.Warn(ctx, "failed to invalidate expired session", zap.Error(err))
		}
		return nil, entity.ErrSessionExpired
	}

	if !session.Active {
		return nil, entity.ErrSessionInactive
	}

	return session, nil
}

// InvalidateSession marks a session inactive. Later requests carrying its
// token are rejected.
func (uc *AccessUsecase) InvalidateSession(ctx context.Context, id string) error {
	if err := uc.sessionRepo.Invalidate(ctx, id); err != nil {
		return err
	}

	ctxzap.Info(ctx, "session invalidated", zap.String("session_id", id))
	return nil
}

// GetAuditLog returns the most recent audit entries matching the filter.
func (uc *AccessUsecase) GetAuditLog(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditEntry, error) {
	entries, err := uc.auditRepo.List(ctx, filter, auditLogLimit)
	if err != nil {
		return nil, fmt.Errorf("get audit log: %w", err)
	}

	return entries, nil
}

// AccessibleBoxes lists the knowledge boxes the principal may search.
func (uc *AccessUsecase) AccessibleBoxes(role entity.Role, region entity.Region) []string {
	return AccessibleBoxes(role, region)
}

func sessionID(userID string, now time.Time) string {
	salt := uuid.NewString()
	sum := sha256.Sum256([]byte(userID + now.Format(time.RFC3339Nano) + salt))
	return hex.EncodeToString(sum[:])
}
