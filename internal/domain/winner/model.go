package winner

import "time"

// Period names map to fixed regular-season week ranges.
const (
	PeriodQ1 = "Q1"
	PeriodQ2 = "Q2"
	PeriodQ3 = "Q3"
	PeriodQ4 = "Q4"
)

// PeriodEndWeeks lists the regular-season weeks that close each quarter.
var PeriodEndWeeks = []int{4, 9, 14, 18}

// PeriodRange returns the inclusive week range for a period name.
func PeriodRange(periodName string) (startWeek, endWeek int, ok bool) {
	switch periodName {
	case PeriodQ1:
		return 1, 4, true
	case PeriodQ2:
		return 5, 9, true
	case PeriodQ3:
		return 10, 14, true
	case PeriodQ4:
		return 15, 18, true
	default:
		return 0, 0, false
	}
}

// PeriodForWeek returns the period a regular-season week belongs to.
func PeriodForWeek(week int) (string, bool) {
	switch {
	case week >= 1 && week <= 4:
		return PeriodQ1, true
	case week >= 5 && week <= 9:
		return PeriodQ2, true
	case week >= 10 && week <= 14:
		return PeriodQ3, true
	case week >= 15 && week <= 18:
		return PeriodQ4, true
	default:
		return "", false
	}
}

// IsPeriodEndWeek reports whether a week closes a quarter.
func IsPeriodEndWeek(week int) bool {
	for _, w := range PeriodEndWeeks {
		if w == week {
			return true
		}
	}
	return false
}

// TieBreak carries how a tie was resolved for a winner record.
type TieBreak struct {
	Used         bool
	Question     string
	TargetAnswer *float64
	WinnerAnswer *float64
	Difference   *float64
}

// WeeklyWinner is the canonical winner record for one pool and week.
// Unique on (pool_id, week, season).
type WeeklyWinner struct {
	PoolID            string
	Season            int
	Week              int
	ParticipantID     string
	ParticipantName   string
	Points            int
	CorrectPicks      int
	TieBreak          TieBreak
	TotalParticipants int
	CalculatedAt      time.Time
}

// PeriodWinner is the canonical winner record for one pool and quarter.
// Unique on (pool_id, season, period_name).
type PeriodWinner struct {
	PoolID            string
	Season            int
	PeriodName        string
	ParticipantID     string
	ParticipantName   string
	TotalPoints       int
	TotalCorrectPicks int
	WeeksWon          int
	TieBreak          TieBreak
	TotalParticipants int
	CalculatedAt      time.Time
}

// SeasonWinner is the canonical winner record for one pool and season.
// Unique on (pool_id, season).
type SeasonWinner struct {
	PoolID            string
	Season            int
	ParticipantID     string
	ParticipantName   string
	TotalPoints       int
	TotalCorrectPicks int
	WeeksWon          int
	TieBreak          TieBreak
	TotalParticipants int
	CalculatedAt      time.Time
}
