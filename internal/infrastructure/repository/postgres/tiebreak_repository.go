package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type tieBreakAnswerTableModel struct {
	ID            int64      `db:"id"`
	ParticipantID string     `db:"participant_public_id"`
	PoolID        string     `db:"pool_public_id"`
	Season        int        `db:"season"`
	SeasonType    int        `db:"season_type"`
	Week          int        `db:"week"`
	Answer        float64    `db:"answer"`
	SubmittedAt   time.Time  `db:"submitted_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type tieBreakAnswerInsertModel struct {
	ParticipantID string    `db:"participant_public_id"`
	PoolID        string    `db:"pool_public_id"`
	Season        int       `db:"season"`
	SeasonType    int       `db:"season_type"`
	Week          int       `db:"week"`
	Answer        float64   `db:"answer"`
	SubmittedAt   time.Time `db:"submitted_at"`
}

func (m tieBreakAnswerTableModel) toDomain() tiebreak.Answer {
	return tiebreak.Answer{
		ParticipantID: m.ParticipantID,
		PoolID:        m.PoolID,
		Season:        m.Season,
		SeasonType:    m.SeasonType,
		Week:          m.Week,
		Answer:        m.Answer,
		SubmittedAt:   m.SubmittedAt,
	}
}

type TieBreakRepository struct {
	db *sqlx.DB
}

func NewTieBreakRepository(db *sqlx.DB) *TieBreakRepository {
	return &TieBreakRepository{db: db}
}

func (r *TieBreakRepository) Get(ctx context.Context, participantID, poolID string, season, seasonType, week int) (tiebreak.Answer, bool, error) {
	query, args, err := qb.Select("*").From("tie_breaker_answers").
		Where(
			qb.Eq("participant_public_id", participantID),
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return tiebreak.Answer{}, false, fmt.Errorf("build get tie-breaker answer query: %w", err)
	}

	var row tieBreakAnswerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tiebreak.Answer{}, false, nil
		}
		return tiebreak.Answer{}, false, fmt.Errorf("get tie-breaker answer participant=%s week=%d: %w", participantID, week, err)
	}

	return row.toDomain(), true, nil
}

func (r *TieBreakRepository) ListByPoolWeek(ctx context.Context, poolID string, season, seasonType, week int) ([]tiebreak.Answer, error) {
	query, args, err := qb.Select("*").From("tie_breaker_answers").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("participant_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tie-breaker answers query: %w", err)
	}

	var rows []tieBreakAnswerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tie-breaker answers pool=%s week=%d: %w", poolID, week, err)
	}

	out := make([]tiebreak.Answer, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TieBreakRepository) Upsert(ctx context.Context, a tiebreak.Answer) error {
	submittedAt := a.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	insertModel := tieBreakAnswerInsertModel{
		ParticipantID: a.ParticipantID,
		PoolID:        a.PoolID,
		Season:        a.Season,
		SeasonType:    a.SeasonType,
		Week:          a.Week,
		Answer:        a.Answer,
		SubmittedAt:   submittedAt,
	}
	query, args, err := qb.InsertModel("tie_breaker_answers", insertModel, `ON CONFLICT (participant_public_id, pool_public_id, season, season_type, week) WHERE deleted_at IS NULL
DO UPDATE SET
    answer = EXCLUDED.answer,
    submitted_at = EXCLUDED.submitted_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert tie-breaker answer query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tie-breaker answer participant=%s week=%d: %w", a.ParticipantID, a.Week, err)
	}
	return nil
}
