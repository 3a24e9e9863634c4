package tiebreak

import "time"

// Answer is one participant's numeric tie-breaker guess for a week, compared
// against the pool's target answer by absolute difference.
type Answer struct {
	ParticipantID string
	PoolID        string
	Season        int
	SeasonType    int
	Week          int
	Answer        float64
	SubmittedAt   time.Time
}
