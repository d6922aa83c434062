package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessSessionRepository persists authenticated sessions.
type AccessSessionRepository interface {
	Create(ctx context.Context, session entity.AccessSession) error
	Get(ctx context.Context, id string) (*entity.AccessSession, error)
	Invalidate(ctx context.Context, id string) error
}

var _ AccessSessionRepository = &AccessSessionPostgres{}

type AccessSessionPostgres struct {
	db *pgxpool.Pool
}

func NewAccessSessionPostgres(db *pgxpool.Pool) *AccessSessionPostgres {
	return &AccessSessionPostgres{db: db}
}

func (r *AccessSessionPostgres) Create(ctx context.Context, session entity.AccessSession) error {
	query := squirrel.Insert("access_sessions").
		Columns("id", "user_id", "user_role", "created_at", "expires_at", "ip_address", "is_active").
		Values(session.ID, session.UserID, string(session.UserRole), session.CreatedAt, session.ExpiresAt, session.IPAddress, session.Active).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build session insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *AccessSessionPostgres) Get(ctx context.Context, id string) (*entity.AccessSession, error) {
	query := squirrel.Select("id", "user_id", "user_role", "created_at", "expires_at", "ip_address", "is_active").
		From("access_sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session select: %w", err)
	}

	var (
		session entity.AccessSession
		role    string
		ip      *string
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&session.ID, &session.UserID, &role, &session.CreatedAt, &session.ExpiresAt, &ip, &session.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	session.UserRole = entity.Role(role)
	if ip != nil {
		session.IPAddress = *ip
	}

	return &session, nil
}

func (r *AccessSessionPostgres) Invalidate(ctx context.Context, id string) error {
	query := squirrel.Update("access_sessions").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build session update: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}
