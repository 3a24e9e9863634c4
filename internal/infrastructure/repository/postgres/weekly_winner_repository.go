package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type WeeklyWinnerRepository struct {
	db *sqlx.DB
}

func NewWeeklyWinnerRepository(db *sqlx.DB) *WeeklyWinnerRepository {
	return &WeeklyWinnerRepository{db: db}
}

func (r *WeeklyWinnerRepository) Get(ctx context.Context, poolID string, season, week int) (winner.WeeklyWinner, bool, error) {
	query, args, err := qb.Select("*").From("weekly_winners").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return winner.WeeklyWinner{}, false, fmt.Errorf("build get weekly winner query: %w", err)
	}

	var row weeklyWinnerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return winner.WeeklyWinner{}, false, nil
		}
		return winner.WeeklyWinner{}, false, fmt.Errorf("get weekly winner pool=%s week=%d: %w", poolID, week, err)
	}

	return row.toDomain(), true, nil
}

func (r *WeeklyWinnerRepository) ListBySeason(ctx context.Context, poolID string, season int) ([]winner.WeeklyWinner, error) {
	return r.list(ctx, poolID, season, 1, 22)
}

func (r *WeeklyWinnerRepository) ListByWeekRange(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]winner.WeeklyWinner, error) {
	return r.list(ctx, poolID, season, startWeek, endWeek)
}

func (r *WeeklyWinnerRepository) list(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]winner.WeeklyWinner, error) {
	query, args, err := qb.Select("*").From("weekly_winners").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Expr("week >= ?", startWeek),
			qb.Expr("week <= ?", endWeek),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly winners query: %w", err)
	}

	var rows []weeklyWinnerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly winners weeks %d-%d: %w", startWeek, endWeek, err)
	}

	out := make([]winner.WeeklyWinner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *WeeklyWinnerRepository) Upsert(ctx context.Context, w winner.WeeklyWinner) error {
	insertModel := weeklyWinnerInsertModel{
		PoolID:               w.PoolID,
		Season:               w.Season,
		Week:                 w.Week,
		ParticipantID:        w.ParticipantID,
		ParticipantName:      w.ParticipantName,
		Points:               w.Points,
		CorrectPicks:         w.CorrectPicks,
		TieBreakerUsed:       w.TieBreak.Used,
		TieBreakerQuestion:   w.TieBreak.Question,
		TieBreakerTarget:     w.TieBreak.TargetAnswer,
		WinnerAnswer:         w.TieBreak.WinnerAnswer,
		TieBreakerDifference: w.TieBreak.Difference,
		TotalParticipants:    w.TotalParticipants,
		CalculatedAt:         w.CalculatedAt,
	}
	query, args, err := qb.InsertModel("weekly_winners", insertModel, `ON CONFLICT (pool_public_id, week, season) WHERE deleted_at IS NULL
DO UPDATE SET
    participant_public_id = EXCLUDED.participant_public_id,
    participant_name = EXCLUDED.participant_name,
    points = EXCLUDED.points,
    correct_picks = EXCLUDED.correct_picks,
    tie_breaker_used = EXCLUDED.tie_breaker_used,
    tie_breaker_question = EXCLUDED.tie_breaker_question,
    tie_breaker_target_answer = EXCLUDED.tie_breaker_target_answer,
    winner_tie_breaker_answer = EXCLUDED.winner_tie_breaker_answer,
    tie_breaker_difference = EXCLUDED.tie_breaker_difference,
    total_participants = EXCLUDED.total_participants,
    calculated_at = EXCLUDED.calculated_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert weekly winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weekly winner pool=%s week=%d: %w", w.PoolID, w.Week, err)
	}
	return nil
}

func (r *WeeklyWinnerRepository) Delete(ctx context.Context, poolID string, season, week int) error {
	query, args, err := qb.Update("weekly_winners").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete weekly winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete weekly winner pool=%s week=%d: %w", poolID, week, err)
	}
	return nil
}
