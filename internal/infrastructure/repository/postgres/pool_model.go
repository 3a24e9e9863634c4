package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
)

type poolTableModel struct {
	ID                 int64           `db:"id"`
	PublicID           string          `db:"public_id"`
	Name               string          `db:"name"`
	Season             int             `db:"season"`
	PoolType           string          `db:"pool_type"`
	TieBreakMethod     string          `db:"tie_break_method"`
	TieBreakerQuestion string          `db:"tie_breaker_question"`
	TieBreakerAnswer   sql.NullFloat64 `db:"tie_breaker_answer"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
	DeletedAt          *time.Time      `db:"deleted_at"`
}

type poolInsertModel struct {
	PublicID           string   `db:"public_id"`
	Name               string   `db:"name"`
	Season             int      `db:"season"`
	PoolType           string   `db:"pool_type"`
	TieBreakMethod     string   `db:"tie_break_method"`
	TieBreakerQuestion string   `db:"tie_breaker_question"`
	TieBreakerAnswer   *float64 `db:"tie_breaker_answer"`
}

func (m poolTableModel) toDomain() pool.Pool {
	return pool.Pool{
		ID:                 m.PublicID,
		Name:               m.Name,
		Season:             m.Season,
		Type:               pool.Type(m.PoolType),
		TieBreakMethod:     pool.TieBreakMethod(m.TieBreakMethod),
		TieBreakerQuestion: m.TieBreakerQuestion,
		TieBreakerAnswer:   nullFloatToPtr(m.TieBreakerAnswer),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
