package access

import (
	"context"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type AccessUsecase interface {
	ValidateAccess(ctx context.Context, req *entity.AccessCheckRequest) (*entity.AccessDecision, error)
	CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.AccessSession, error)
	ValidateSession(ctx context.Context, id string) (*entity.AccessSession, error)
	InvalidateSession(ctx context.Context, id string) error
	GetAuditLog(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditEntry, error)
}
