package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game %s: %w", id, err)
	}

	return row.toDomain(), true, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, season, seasonType, week int) ([]game.Game, error) {
	return r.list(ctx, season, seasonType, week, week)
}

func (r *GameRepository) ListByWeekRange(ctx context.Context, season, seasonType, startWeek, endWeek int) ([]game.Game, error) {
	return r.list(ctx, season, seasonType, startWeek, endWeek)
}

func (r *GameRepository) list(ctx context.Context, season, seasonType, startWeek, endWeek int) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.Expr("week >= ?", startWeek),
			qb.Expr("week <= ?", endWeek),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week", "kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games weeks %d-%d: %w", startWeek, endWeek, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) Upsert(ctx context.Context, games []game.Game) error {
	if len(games) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, g := range games {
		insertModel := gameInsertModel{
			PublicID:   g.ID,
			Season:     g.Season,
			SeasonType: g.SeasonType,
			Week:       g.Week,
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			HomeScore:  g.HomeScore,
			AwayScore:  g.AwayScore,
			Status:     game.NormalizeStatus(g.Status),
			Winner:     g.Winner,
			Quarter:    g.Quarter,
			Clock:      g.Clock,
		}
		if !g.KickoffAt.IsZero() {
			kickoff := g.KickoffAt
			insertModel.KickoffAt = &kickoff
		}

		query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    winner = EXCLUDED.winner,
    quarter = EXCLUDED.quarter,
    clock = EXCLUDED.clock,
    kickoff_at = EXCLUDED.kickoff_at,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert game query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert games tx: %w", err)
	}
	return nil
}
