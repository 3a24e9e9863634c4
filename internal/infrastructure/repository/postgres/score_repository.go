package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/score"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type weeklyScoreTableModel struct {
	ID            int64      `db:"id"`
	ParticipantID string     `db:"participant_public_id"`
	PoolID        string     `db:"pool_public_id"`
	Season        int        `db:"season"`
	Week          int        `db:"week"`
	Points        int        `db:"points"`
	CorrectPicks  int        `db:"correct_picks"`
	TotalPicks    int        `db:"total_picks"`
	Rank          int        `db:"rank"`
	CalculatedAt  time.Time  `db:"calculated_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type weeklyScoreInsertModel struct {
	ParticipantID string    `db:"participant_public_id"`
	PoolID        string    `db:"pool_public_id"`
	Season        int       `db:"season"`
	Week          int       `db:"week"`
	Points        int       `db:"points"`
	CorrectPicks  int       `db:"correct_picks"`
	TotalPicks    int       `db:"total_picks"`
	Rank          int       `db:"rank"`
	CalculatedAt  time.Time `db:"calculated_at"`
}

func (m weeklyScoreTableModel) toDomain() score.WeeklyScore {
	return score.WeeklyScore{
		ParticipantID: m.ParticipantID,
		PoolID:        m.PoolID,
		Season:        m.Season,
		Week:          m.Week,
		Points:        m.Points,
		CorrectPicks:  m.CorrectPicks,
		TotalPicks:    m.TotalPicks,
		Rank:          m.Rank,
		CalculatedAt:  m.CalculatedAt,
	}
}

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) ListByPoolWeek(ctx context.Context, poolID string, season, week int) ([]score.WeeklyScore, error) {
	return r.list(ctx, poolID, season, week, week)
}

func (r *ScoreRepository) ListByPoolWeekRange(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]score.WeeklyScore, error) {
	return r.list(ctx, poolID, season, startWeek, endWeek)
}

func (r *ScoreRepository) list(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]score.WeeklyScore, error) {
	query, args, err := qb.Select("*").From("weekly_scores").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Expr("week >= ?", startWeek),
			qb.Expr("week <= ?", endWeek),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week", "rank", "participant_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly scores query: %w", err)
	}

	var rows []weeklyScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly scores weeks %d-%d: %w", startWeek, endWeek, err)
	}

	out := make([]score.WeeklyScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ReplaceWeek soft-deletes the week's rows and writes the fresh set in one
// transaction, so readers never observe a half-written week.
func (r *ScoreRepository) ReplaceWeek(ctx context.Context, poolID string, season, week int, scores []score.WeeklyScore) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace weekly scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("weekly_scores").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear weekly scores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear weekly scores: %w", err)
	}

	for _, item := range scores {
		insertModel := weeklyScoreInsertModel{
			ParticipantID: item.ParticipantID,
			PoolID:        poolID,
			Season:        season,
			Week:          week,
			Points:        item.Points,
			CorrectPicks:  item.CorrectPicks,
			TotalPicks:    item.TotalPicks,
			Rank:          item.Rank,
			CalculatedAt:  item.CalculatedAt,
		}
		query, args, err := qb.InsertModel("weekly_scores", insertModel, `ON CONFLICT (participant_public_id, pool_public_id, season, week) WHERE deleted_at IS NULL
DO UPDATE SET
    points = EXCLUDED.points,
    correct_picks = EXCLUDED.correct_picks,
    total_picks = EXCLUDED.total_picks,
    rank = EXCLUDED.rank,
    calculated_at = EXCLUDED.calculated_at,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert weekly score query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert weekly score participant=%s week=%d: %w", item.ParticipantID, week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace weekly scores tx: %w", err)
	}
	return nil
}
