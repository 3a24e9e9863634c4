package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type SeasonWinnerRepository struct {
	db *sqlx.DB
}

func NewSeasonWinnerRepository(db *sqlx.DB) *SeasonWinnerRepository {
	return &SeasonWinnerRepository{db: db}
}

func (r *SeasonWinnerRepository) Get(ctx context.Context, poolID string, season int) (winner.SeasonWinner, bool, error) {
	query, args, err := qb.Select("*").From("season_winners").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return winner.SeasonWinner{}, false, fmt.Errorf("build get season winner query: %w", err)
	}

	var row seasonWinnerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return winner.SeasonWinner{}, false, nil
		}
		return winner.SeasonWinner{}, false, fmt.Errorf("get season winner pool=%s season=%d: %w", poolID, season, err)
	}

	return row.toDomain(), true, nil
}

func (r *SeasonWinnerRepository) Upsert(ctx context.Context, w winner.SeasonWinner) error {
	insertModel := seasonWinnerInsertModel{
		PoolID:               w.PoolID,
		Season:               w.Season,
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
	query, args, err := qb.InsertModel("season_winners", insertModel, `ON CONFLICT (pool_public_id, season) WHERE deleted_at IS NULL
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
		return fmt.Errorf("build upsert season winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season winner pool=%s season=%d: %w", w.PoolID, w.Season, err)
	}
	return nil
}

func (r *SeasonWinnerRepository) Delete(ctx context.Context, poolID string, season int) error {
	query, args, err := qb.Update("season_winners").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season winner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete season winner pool=%s season=%d: %w", poolID, season, err)
	}
	return nil
}
