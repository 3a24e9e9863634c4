package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
)

type gameTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	Season     int            `db:"season"`
	SeasonType int            `db:"season_type"`
	Week       int            `db:"week"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	HomeScore  sql.NullInt64  `db:"home_score"`
	AwayScore  sql.NullInt64  `db:"away_score"`
	Status     string         `db:"status"`
	Winner     sql.NullString `db:"winner"`
	Quarter    sql.NullInt64  `db:"quarter"`
	Clock      string         `db:"clock"`
	KickoffAt  sql.NullTime   `db:"kickoff_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}

type gameInsertModel struct {
	PublicID   string     `db:"public_id"`
	Season     int        `db:"season"`
	SeasonType int        `db:"season_type"`
	Week       int        `db:"week"`
	HomeTeam   string     `db:"home_team"`
	AwayTeam   string     `db:"away_team"`
	HomeScore  *int       `db:"home_score"`
	AwayScore  *int       `db:"away_score"`
	Status     string     `db:"status"`
	Winner     *string    `db:"winner"`
	Quarter    *int       `db:"quarter"`
	Clock      string     `db:"clock"`
	KickoffAt  *time.Time `db:"kickoff_at"`
}

func (m gameTableModel) toDomain() game.Game {
	g := game.Game{
		ID:         m.PublicID,
		Season:     m.Season,
		SeasonType: m.SeasonType,
		Week:       m.Week,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		HomeScore:  nullIntToPtr(m.HomeScore),
		AwayScore:  nullIntToPtr(m.AwayScore),
		Status:     m.Status,
		Winner:     nullStringToPtr(m.Winner),
		Quarter:    nullIntToPtr(m.Quarter),
		Clock:      m.Clock,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.KickoffAt.Valid {
		g.KickoffAt = m.KickoffAt.Time
	}
	return g
}
