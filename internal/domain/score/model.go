package score

import "time"

// WeeklyScore is a materialized row of the aggregator output for one
// participant and week. Rows are a cache rebuilt from picks and games, never
// a source of truth.
type WeeklyScore struct {
	ParticipantID string
	PoolID        string
	Season        int
	Week          int
	Points        int
	CorrectPicks  int
	TotalPicks    int
	Rank          int
	CalculatedAt  time.Time
}
