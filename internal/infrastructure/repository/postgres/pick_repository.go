package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListByPoolAndGames(ctx context.Context, poolID string, gameIDs []string) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.In("game_public_id", stringsToAny(gameIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("participant_public_id", "confidence_points DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks for pool %s: %w", poolID, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) ListByParticipantAndGames(ctx context.Context, participantID, poolID string, gameIDs []string) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("participant_public_id", participantID),
			qb.Eq("pool_public_id", poolID),
			qb.In("game_public_id", stringsToAny(gameIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("confidence_points DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participant picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks for participant %s: %w", participantID, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, picks []pick.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert picks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range picks {
		insertModel := pickInsertModel{
			ParticipantID:    p.ParticipantID,
			PoolID:           p.PoolID,
			GameID:           p.GameID,
			PredictedWinner:  p.PredictedWinner,
			ConfidencePoints: p.ConfidencePoints,
			SubmittedAt:      p.SubmittedAt,
		}
		query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (participant_public_id, pool_public_id, game_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    predicted_winner = EXCLUDED.predicted_winner,
    confidence_points = EXCLUDED.confidence_points,
    submitted_at = EXCLUDED.submitted_at,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert pick participant=%s game=%s: %w", p.ParticipantID, p.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert picks tx: %w", err)
	}
	return nil
}

// DeleteByParticipantAndGames soft-deletes picks, used by the admin unlock
// flow so a participant can resubmit.
func (r *PickRepository) DeleteByParticipantAndGames(ctx context.Context, participantID, poolID string, gameIDs []string) error {
	if len(gameIDs) == 0 {
		return nil
	}

	query, args, err := qb.Update("picks").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("participant_public_id", participantID),
			qb.Eq("pool_public_id", poolID),
			qb.In("game_public_id", stringsToAny(gameIDs)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete picks query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete picks for participant %s: %w", participantID, err)
	}
	return nil
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
