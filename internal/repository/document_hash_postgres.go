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

// DocumentHashRepository stores content hashes for deduplication.
type DocumentHashRepository interface {
	Store(ctx context.Context, hash entity.DocumentHash) error
	FindByContentHash(ctx context.Context, contentHash string) (string, error)
	TouchAccess(ctx context.Context, documentID string) error
}

var _ DocumentHashRepository = &DocumentHashPostgres{}

type DocumentHashPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentHashPostgres(db *pgxpool.Pool) *DocumentHashPostgres {
	return &DocumentHashPostgres{db: db}
}

func (r *DocumentHashPostgres) Store(ctx context.Context, hash entity.DocumentHash) error {
	query := squirrel.Insert("document_hashes").
		Columns("document_id", "content_hash", "kb_id", "created_at").
		Values(hash.DocumentID, hash.ContentHash, hash.KnowledgeBoxID, hash.CreatedAt).
		Suffix("ON CONFLICT (document_id) DO UPDATE SET content_hash = EXCLUDED.content_hash, kb_id = EXCLUDED.kb_id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build hash insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("store document hash: %w", err)
	}

	return nil
}

// FindByContentHash returns the id of the earliest stored document with the
// given content hash, or empty string when none is known.
func (r *DocumentHashPostgres) FindByContentHash(ctx context.Context, contentHash string) (string, error) {
	query := squirrel.Select("document_id").
		From("document_hashes").
		Where(squirrel.Eq{"content_hash": contentHash}).
		OrderBy("created_at ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("build hash select: %w", err)
	}

	var documentID string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find document by hash: %w", err)
	}

	return documentID, nil
}

func (r *DocumentHashPostgres) TouchAccess(ctx context.Context, documentID string) error {
	query := squirrel.Update("document_hashes").
		Set("last_accessed", squirrel.Expr("now()")).
		Set("access_count", squirrel.Expr("access_count + 1")).
		Where(squirrel.Eq{"document_id": documentID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build hash update: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("touch document access: %w", err)
	}

	return nil
}
