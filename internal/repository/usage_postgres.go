package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository tracks billable vendor operations.
type UsageRepository interface {
	Record(ctx context.Context, record entity.UsageRecord) error
	Summarize(ctx context.Context, since time.Time) (*entity.UsageSummary, error)
}

var _ UsageRepository = &UsagePostgres{}

type UsagePostgres struct {
	db *pgxpool.Pool
}

func NewUsagePostgres(db *pgxpool.Pool) *UsagePostgres {
	return &UsagePostgres{db: db}
}

func (r *UsagePostgres) Record(ctx context.Context, record entity.UsageRecord) error {
	query := squirrel.Insert("usage_tracking").
		Columns("ts", "operation_type", "resource_id", "cost", "kb_id", "user_id", "saved_by_optimization").
		Values(record.Timestamp, string(record.Operation), record.ResourceID, record.Cost,
			record.KnowledgeBoxID, record.UserID, record.SavedByOptimization).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build usage insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	return nil
}

func (r *UsagePostgres) Summarize(ctx context.Context, since time.Time) (*entity.UsageSummary, error) {
	query := squirrel.Select("operation_type", "COALESCE(SUM(cost), 0)", "COUNT(*)").
		From("usage_tracking").
		Where(squirrel.GtOrEq{"ts": since}).
		GroupBy("operation_type").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage select: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	defer rows.Close()

	summary := &entity.UsageSummary{
		CostsByOperation: make(map[entity.OperationType]float64),
	}

	for rows.Next() {
		var (
			op    string
			cost  float64
			count int64
		)
		if err := rows.Scan(&op, &cost, &count); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}

		operation := entity.OperationType(op)
		summary.CostsByOperation[operation] = cost
		summary.TotalCost += cost
		summary.TotalOperations += count
		if strings.Contains(op, "query") {
			summary.TotalQueries += count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage summary: %w", err)
	}

	return summary, nil
}
