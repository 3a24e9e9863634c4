package pick

import "time"

const (
	MinConfidencePoints = 1
	MaxConfidencePoints = 16
)

// Pick stores one participant's winner prediction for one game. A participant
// has at most one pick per game per pool; confidence points are unique within
// their weekly slate.
type Pick struct {
	ParticipantID    string
	PoolID           string
	GameID           string
	PredictedWinner  string
	ConfidencePoints int
	SubmittedAt      time.Time
	UpdatedAt        time.Time
}
