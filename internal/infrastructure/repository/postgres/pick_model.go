package postgres

import (
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
)

type pickTableModel struct {
	ID               int64      `db:"id"`
	ParticipantID    string     `db:"participant_public_id"`
	PoolID           string     `db:"pool_public_id"`
	GameID           string     `db:"game_public_id"`
	PredictedWinner  string     `db:"predicted_winner"`
	ConfidencePoints int        `db:"confidence_points"`
	SubmittedAt      time.Time  `db:"submitted_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

type pickInsertModel struct {
	ParticipantID    string    `db:"participant_public_id"`
	PoolID           string    `db:"pool_public_id"`
	GameID           string    `db:"game_public_id"`
	PredictedWinner  string    `db:"predicted_winner"`
	ConfidencePoints int       `db:"confidence_points"`
	SubmittedAt      time.Time `db:"submitted_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		ParticipantID:    m.ParticipantID,
		PoolID:           m.PoolID,
		GameID:           m.GameID,
		PredictedWinner:  m.PredictedWinner,
		ConfidencePoints: m.ConfidencePoints,
		SubmittedAt:      m.SubmittedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
