package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobSyncScoreboard    = "sync-scoreboard"
	JobMaterializeScores = "materialize-scores"
	JobRecalculateWeek   = "recalculate-week"
)

type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Season       int
	Week         int
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
