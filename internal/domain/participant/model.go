package participant

import "time"

// Participant is one pool member.
type Participant struct {
	ID        string
	PoolID    string
	Name      string
	Active    bool
	JoinedAt  time.Time
	UpdatedAt time.Time
}
