package rawdata

import "time"

// Payload stores one raw scoreboard API response for replay and debugging.
type Payload struct {
	Source          string
	EntityType      string
	EntityKey       string
	Season          int
	SeasonType      int
	Week            int
	PayloadJSON     string
	PayloadHash     string
	SourceUpdatedAt *time.Time
}
