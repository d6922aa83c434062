package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CostSavingRepository records savings produced by optimizations.
type CostSavingRepository interface {
	Record(ctx context.Context, saving entity.CostSaving) error
	TotalSince(ctx context.Context, since time.Time) (float64, error)
}

var _ CostSavingRepository = &CostSavingPostgres{}

type CostSavingPostgres struct {
	db *pgxpool.Pool
}

func NewCostSavingPostgres(db *pgxpool.Pool) *CostSavingPostgres {
	return &CostSavingPostgres{db: db}
}

func (r *CostSavingPostgres) Record(ctx context.Context, saving entity.CostSaving) error {
	query := squirrel.Insert("cost_savings").
		Columns("ts", "optimization_type", "amount_saved", "details").
		Values(saving.Timestamp, saving.OptimizationType, saving.AmountSaved, saving.Details).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build saving insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record cost saving: %w", err)
	}

	return nil
}

func (r *CostSavingPostgres) TotalSince(ctx context.Context, since time.Time) (float64, error) {
	query := squirrel.Select("COALESCE(SUM(amount_saved), 0)").
		From("cost_savings").
		Where(squirrel.GtOrEq{"ts": since}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build saving select: %w", err)
	}

	var total float64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("total cost savings: %w", err)
	}

	return total, nil
}
