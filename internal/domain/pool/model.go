package pool

import "time"

type Type string

const (
	TypeNormal   Type = "normal"
	TypeKnockout Type = "knockout"
)

// TieBreakMethod selects the single comparator a pool uses for weekly ties.
type TieBreakMethod string

const (
	TieBreakTotalPoints  TieBreakMethod = "total_points"
	TieBreakCorrectPicks TieBreakMethod = "correct_picks"
	TieBreakAccuracy     TieBreakMethod = "accuracy"
	TieBreakLastWeek     TieBreakMethod = "last_week"
	TieBreakCustom       TieBreakMethod = "custom"
)

func ValidTieBreakMethod(method TieBreakMethod) bool {
	switch method {
	case TieBreakTotalPoints, TieBreakCorrectPicks, TieBreakAccuracy, TieBreakLastWeek, TieBreakCustom:
		return true
	default:
		return false
	}
}

// Pool is one confidence-pool contest for a season.
type Pool struct {
	ID                 string
	Name               string
	Season             int
	Type               Type
	TieBreakMethod     TieBreakMethod
	TieBreakerQuestion string
	TieBreakerAnswer   *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BreaksWeeklyTies reports whether a tied week must resolve to a single
// winner. Normal pools tolerate co-winners outside period-ending weeks.
func (p Pool) BreaksWeeklyTies(periodEndingWeek bool) bool {
	if p.Type == TypeKnockout {
		return true
	}
	return periodEndingWeek
}
