package postgres

import (
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/team"
)

type teamTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Name         string     `db:"name"`
	Abbreviation string     `db:"abbreviation"`
	LogoURL      string     `db:"logo_url"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

type teamInsertModel struct {
	PublicID     string `db:"public_id"`
	Name         string `db:"name"`
	Abbreviation string `db:"abbreviation"`
	LogoURL      string `db:"logo_url"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:           m.PublicID,
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		LogoURL:      m.LogoURL,
	}
}
