package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
)

type weeklyWinnerTableModel struct {
	ID                   int64           `db:"id"`
	PoolID               string          `db:"pool_public_id"`
	Season               int             `db:"season"`
	Week                 int             `db:"week"`
	ParticipantID        string          `db:"participant_public_id"`
	ParticipantName      string          `db:"participant_name"`
	Points               int             `db:"points"`
	CorrectPicks         int             `db:"correct_picks"`
	TieBreakerUsed       bool            `db:"tie_breaker_used"`
	TieBreakerQuestion   string          `db:"tie_breaker_question"`
	TieBreakerTarget     sql.NullFloat64 `db:"tie_breaker_target_answer"`
	WinnerAnswer         sql.NullFloat64 `db:"winner_tie_breaker_answer"`
	TieBreakerDifference sql.NullFloat64 `db:"tie_breaker_difference"`
	TotalParticipants    int             `db:"total_participants"`
	CalculatedAt         time.Time       `db:"calculated_at"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	DeletedAt            *time.Time      `db:"deleted_at"`
}

type weeklyWinnerInsertModel struct {
	PoolID               string    `db:"pool_public_id"`
	Season               int       `db:"season"`
	Week                 int       `db:"week"`
	ParticipantID        string    `db:"participant_public_id"`
	ParticipantName      string    `db:"participant_name"`
	Points               int       `db:"points"`
	CorrectPicks         int       `db:"correct_picks"`
	TieBreakerUsed       bool      `db:"tie_breaker_used"`
	TieBreakerQuestion   string    `db:"tie_breaker_question"`
	TieBreakerTarget     *float64  `db:"tie_breaker_target_answer"`
	WinnerAnswer         *float64  `db:"winner_tie_breaker_answer"`
	TieBreakerDifference *float64  `db:"tie_breaker_difference"`
	TotalParticipants    int       `db:"total_participants"`
	CalculatedAt         time.Time `db:"calculated_at"`
}

func (m weeklyWinnerTableModel) toDomain() winner.WeeklyWinner {
	return winner.WeeklyWinner{
		PoolID:          m.PoolID,
		Season:          m.Season,
		Week:            m.Week,
		ParticipantID:   m.ParticipantID,
		ParticipantName: m.ParticipantName,
		Points:          m.Points,
		CorrectPicks:    m.CorrectPicks,
		TieBreak: winner.TieBreak{
			Used:         m.TieBreakerUsed,
			Question:     m.TieBreakerQuestion,
			TargetAnswer: nullFloatToPtr(m.TieBreakerTarget),
			WinnerAnswer: nullFloatToPtr(m.WinnerAnswer),
			Difference:   nullFloatToPtr(m.TieBreakerDifference),
		},
		TotalParticipants: m.TotalParticipants,
		CalculatedAt:      m.CalculatedAt,
	}
}

type periodWinnerTableModel struct {
	ID                   int64           `db:"id"`
	PoolID               string          `db:"pool_public_id"`
	Season               int             `db:"season"`
	PeriodName           string          `db:"period_name"`
	ParticipantID        string          `db:"participant_public_id"`
	ParticipantName      string          `db:"participant_name"`
	TotalPoints          int             `db:"total_points"`
	TotalCorrectPicks    int             `db:"total_correct_picks"`
	WeeksWon             int             `db:"weeks_won"`
	TieBreakerUsed       bool            `db:"tie_breaker_used"`
	TieBreakerQuestion   string          `db:"tie_breaker_question"`
	TieBreakerTarget     sql.NullFloat64 `db:"tie_breaker_target_answer"`
	WinnerAnswer         sql.NullFloat64 `db:"winner_tie_breaker_answer"`
	TieBreakerDifference sql.NullFloat64 `db:"tie_breaker_difference"`
	TotalParticipants    int             `db:"total_participants"`
	CalculatedAt         time.Time       `db:"calculated_at"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	DeletedAt            *time.Time      `db:"deleted_at"`
}

type periodWinnerInsertModel struct {
	PoolID               string    `db:"pool_public_id"`
	Season               int       `db:"season"`
	PeriodName           string    `db:"period_name"`
	ParticipantID        string    `db:"participant_public_id"`
	ParticipantName      string    `db:"participant_name"`
	TotalPoints          int       `db:"total_points"`
	TotalCorrectPicks    int       `db:"total_correct_picks"`
	WeeksWon             int       `db:"weeks_won"`
	TieBreakerUsed       bool      `db:"tie_breaker_used"`
	TieBreakerQuestion   string    `db:"tie_breaker_question"`
	TieBreakerTarget     *float64  `db:"tie_breaker_target_answer"`
	WinnerAnswer         *float64  `db:"winner_tie_breaker_answer"`
	TieBreakerDifference *float64  `db:"tie_breaker_difference"`
	TotalParticipants    int       `db:"total_participants"`
	CalculatedAt         time.Time `db:"calculated_at"`
}

func (m periodWinnerTableModel) toDomain() winner.PeriodWinner {
	return winner.PeriodWinner{
		PoolID:            m.PoolID,
		Season:            m.Season,
		PeriodName:        m.PeriodName,
		ParticipantID:     m.ParticipantID,
		ParticipantName:   m.ParticipantName,
		TotalPoints:       m.TotalPoints,
		TotalCorrectPicks: m.TotalCorrectPicks,
		WeeksWon:          m.WeeksWon,
		TieBreak: winner.TieBreak{
			Used:         m.TieBreakerUsed,
			Question:     m.TieBreakerQuestion,
			TargetAnswer: nullFloatToPtr(m.TieBreakerTarget),
			WinnerAnswer: nullFloatToPtr(m.WinnerAnswer),
			Difference:   nullFloatToPtr(m.TieBreakerDifference),
		},
		TotalParticipants: m.TotalParticipants,
		CalculatedAt:      m.CalculatedAt,
	}
}

type seasonWinnerTableModel struct {
	ID                   int64           `db:"id"`
	PoolID               string          `db:"pool_public_id"`
	Season               int             `db:"season"`
	ParticipantID        string          `db:"participant_public_id"`
	ParticipantName      string          `db:"participant_name"`
	TotalPoints          int             `db:"total_points"`
	TotalCorrectPicks    int             `db:"total_correct_picks"`
	WeeksWon             int             `db:"weeks_won"`
	TieBreakerUsed       bool            `db:"tie_breaker_used"`
	TieBreakerQuestion   string          `db:"tie_breaker_question"`
	TieBreakerTarget     sql.NullFloat64 `db:"tie_breaker_target_answer"`
	WinnerAnswer         sql.NullFloat64 `db:"winner_tie_breaker_answer"`
	TieBreakerDifference sql.NullFloat64 `db:"tie_breaker_difference"`
	TotalParticipants    int             `db:"total_participants"`
	CalculatedAt         time.Time       `db:"calculated_at"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	DeletedAt            *time.Time      `db:"deleted_at"`
}

type seasonWinnerInsertModel struct {
	PoolID               string    `db:"pool_public_id"`
	Season               int       `db:"season"`
	ParticipantID        string    `db:"participant_public_id"`
	ParticipantName      string    `db:"participant_name"`
	TotalPoints          int       `db:"total_points"`
	TotalCorrectPicks    int       `db:"total_correct_picks"`
	WeeksWon             int       `db:"weeks_won"`
	TieBreakerUsed       bool      `db:"tie_breaker_used"`
	TieBreakerQuestion   string    `db:"tie_breaker_question"`
	TieBreakerTarget     *float64  `db:"tie_breaker_target_answer"`
	WinnerAnswer         *float64  `db:"winner_tie_breaker_answer"`
	TieBreakerDifference *float64  `db:"tie_breaker_difference"`
	TotalParticipants    int       `db:"total_participants"`
	CalculatedAt         time.Time `db:"calculated_at"`
}

func (m seasonWinnerTableModel) toDomain() winner.SeasonWinner {
	return winner.SeasonWinner{
		PoolID:            m.PoolID,
		Season:            m.Season,
		ParticipantID:     m.ParticipantID,
		ParticipantName:   m.ParticipantName,
		TotalPoints:       m.TotalPoints,
		TotalCorrectPicks: m.TotalCorrectPicks,
		WeeksWon:          m.WeeksWon,
		TieBreak: winner.TieBreak{
			Used:         m.TieBreakerUsed,
			Question:     m.TieBreakerQuestion,
			TargetAnswer: nullFloatToPtr(m.TieBreakerTarget),
			WinnerAnswer: nullFloatToPtr(m.WinnerAnswer),
			Difference:   nullFloatToPtr(m.TieBreakerDifference),
		},
		TotalParticipants: m.TotalParticipants,
		CalculatedAt:      m.CalculatedAt,
	}
}
