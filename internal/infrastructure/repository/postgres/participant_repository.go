package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	qb "github.com/pickemlabs/confidence-pool/internal/platform/querybuilder"
)

type participantTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	PoolID    string     `db:"pool_public_id"`
	Name      string     `db:"name"`
	Active    bool       `db:"active"`
	JoinedAt  time.Time  `db:"joined_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type participantInsertModel struct {
	PublicID string    `db:"public_id"`
	PoolID   string    `db:"pool_public_id"`
	Name     string    `db:"name"`
	Active   bool      `db:"active"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m participantTableModel) toDomain() participant.Participant {
	return participant.Participant{
		ID:        m.PublicID,
		PoolID:    m.PoolID,
		Name:      m.Name,
		Active:    m.Active,
		JoinedAt:  m.JoinedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.getByIDLiteral(ctx, id)
		}
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant %s: %w", id, err)
	}

	return row.toDomain(), true, nil
}

func (r *ParticipantRepository) getByIDLiteral(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.EqLiteral("public_id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant literal fallback query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant literal fallback: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ParticipantRepository) ListActiveByPool(ctx context.Context, poolID string) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants for pool %s: %w", poolID, err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ParticipantRepository) Upsert(ctx context.Context, p participant.Participant) error {
	joinedAt := p.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	insertModel := participantInsertModel{
		PublicID: p.ID,
		PoolID:   p.PoolID,
		Name:     p.Name,
		Active:   p.Active,
		JoinedAt: joinedAt,
	}
	query, args, err := qb.InsertModel("participants", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    name = EXCLUDED.name,
    active = EXCLUDED.active,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert participant %s: %w", p.ID, err)
	}
	return nil
}
