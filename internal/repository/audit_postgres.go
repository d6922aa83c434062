package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository persists access decisions for the audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry entity.AuditEntry) error
	List(ctx context.Context, filter entity.AuditLogFilter, limit int) ([]entity.AuditEntry, error)
}

var _ AuditRepository = &AuditPostgres{}

type AuditPostgres struct {
	db *pgxpool.Pool
}

func NewAuditPostgres(db *pgxpool.Pool) *AuditPostgres {
	return &AuditPostgres{db: db}
}

func (r *AuditPostgres) Append(ctx context.Context, entry entity.AuditEntry) error {
	query := squirrel.Insert("audit_log").
		Columns("ts", "user_id", "user_role", "action", "resource", "allowed", "details").
		Values(entry.Timestamp, entry.UserID, string(entry.UserRole), string(entry.Action), entry.Resource, entry.Allowed, entry.Details).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

func (r *AuditPostgres) List(ctx context.Context, filter entity.AuditLogFilter, limit int) ([]entity.AuditEntry, error) {
	query := squirrel.Select("id", "ts", "user_id", "user_role", "action", "resource", "allowed", "details").
		From("audit_log").
		OrderBy("ts DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"ts": *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"ts": *filter.EndDate})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var (
			e       entity.AuditEntry
			role    string
			action  string
			details *string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.UserID, &role, &action, &e.Resource, &e.Allowed, &details); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.UserRole = entity.Role(role)
		e.Action = entity.Action(action)
		if details != nil {
			e.Details = *details
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
