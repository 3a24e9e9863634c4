package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").From("pools").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build get pool query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("get pool %s: %w", id, err)
	}

	return row.toDomain(), true, nil
}

func (r *PoolRepository) ListBySeason(ctx context.Context, season int) ([]pool.Pool, error) {
	query, args, err := qb.Select("*").From("pools").
		Where(
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pools query: %w", err)
	}

	var rows []poolTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pools for season %d: %w", season, err)
	}

	out := make([]pool.Pool, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	insertModel := poolInsertModel{
		PublicID:           p.ID,
		Name:               p.Name,
		Season:             p.Season,
		PoolType:           string(p.Type),
		TieBreakMethod:     string(p.TieBreakMethod),
		TieBreakerQuestion: p.TieBreakerQuestion,
		TieBreakerAnswer:   p.TieBreakerAnswer,
	}
	query, args, err := qb.InsertModel("pools", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build create pool query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create pool %s: %w", p.ID, err)
	}
	return nil
}

func (r *PoolRepository) UpdateTieBreaker(ctx context.Context, poolID, question string, answer *float64) error {
	query, args, err := qb.Update("pools").
		Set("tie_breaker_question", question).
		Set("tie_breaker_answer", answer).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pool tie-breaker query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update pool %s tie-breaker: %w", poolID, err)
	}
	return nil
}
