package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type PeriodWinnerRepository struct {
	db *sqlx.DB
}

func NewPeriodWinnerRepository(db *sqlx.DB) *PeriodWinnerRepository {
	return &PeriodWinnerRepository{db: db}
}

func (r *PeriodWinnerRepository) Get(ctx context.Context, poolID string, season int, periodName string) (winner.PeriodWinner, bool, error) {
	query, args, err := qb.Select("*").From("period_winners").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("period_name", periodName),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return winner.PeriodWinner{}, false, fmt.Errorf("build get period winner query: %w", err)
	}

	var row periodWinnerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return winner.PeriodWinner{}, false, nil
		}
		return winner.PeriodWinner{}, false, fmt.Errorf("get period winner pool=%s period=%s: %w", poolID, periodName, err)
	}

	return row.toDomain(), true, nil
}

func (r *PeriodWinnerRepository) ListBySeason(ctx context.Context, poolID string, season int) ([]winner.PeriodWinner, error) {
	query, args, err := qb.Select("*").From("period_winners").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		OrderBy("period_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list period winners query: %w", err)
	}

	var rows []periodWinnerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list period winners pool=%s: %w", poolID, err)
	}

	out := make([]winner.PeriodWinner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PeriodWinnerRepository) Upsert(ctx context.Context, w winner.PeriodWinner) error {
	insertModel := periodWinnerInsertModel{
		PoolID:               w.PoolID,
		Season:               w.Season,
		PeriodName:           w.PeriodName,
		ParticipantID:        w.ParticipantID,
		ParticipantName:      w.ParticipantName,
		TotalPoints:          w.TotalPoints,
		TotalCorrectPicks:    w.TotalCorrectPicks,
		WeeksWon:             w.WeeksWon,
		TieBreakerUsed:       w.TieBreak.Used,
		TieBreakerQuestion:   w.TieBreak.Question,
		TieBreakerTarget:     w.TieBreak.TargetAnswer,
		WinnerAnswer:         w.TieBreak.WinnerAnswer,
		TieBreakerDifference: w.TieBreak.Difference,
		TotalParticipants:    w.TotalParticipants,
		CalculatedAt:         w.CalculatedAt,
	}
	query, args, err := qb.InsertModel("period_winners", insertModel, `ON CONFLICT (pool_public_id, season, period_name) WHERE deleted_at IS NULL
DO UPDATE SET
    participant_public_id = EXCLUDED.participant_public_id,
    participant_name = EXCLUDED.participant_name,
    total_points = EXCLUDED.total_points,
    total_correct_picks = EXCLUDED.total_correct_picks,
    weeks_won = EXCLUDED.weeks_won,
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
		return fmt.Errorf("build upsert period winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert period winner pool=%s period=%s: %w", w.PoolID, w.PeriodName, err)
	}
	return nil
}

func (r *PeriodWinnerRepository) Delete(ctx context.Context, poolID string, season int, periodName string) error {
	query, args, err := qb.Update("period_winners").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("period_name", periodName),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete period winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete period winner pool=%s period=%s: %w", poolID, periodName, err)
	}
	return nil
}
