package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
	StatusPost       = "post"
	StatusCancelled  = "cancelled"
)

const (
	SeasonTypePreseason  = 1
	SeasonTypeRegular    = 2
	SeasonTypePostseason = 3
)

const (
	MaxWeeksRegularSeason = 18
	SuperBowlSeasonType   = SeasonTypePostseason
	SuperBowlWeek         = 1
)

// Game represents one scheduled NFL game. Winner is set only once the game
// has finished; a final game with equal scores is a tie and keeps a nil
// winner, so every pick on it scores zero.
type Game struct {
	ID         string
	Season     int
	SeasonType int
	Week       int
	HomeTeam   string
	AwayTeam   string
	HomeScore  *int
	AwayScore  *int
	Status     string
	Winner     *string
	Quarter    *int
	Clock      string
	KickoffAt  time.Time
	UpdatedAt  time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "":
		return StatusScheduled
	case "pre", "pregame":
		return StatusScheduled
	case "in", "live", "halftime":
		return StatusInProgress
	case "postponed", "canceled":
		return StatusCancelled
	default:
		return status
	}
}

func IsLiveStatus(status string) bool {
	return NormalizeStatus(status) == StatusInProgress
}

// IsFinishedStatus reports whether the game can no longer change outcome.
func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, StatusPost, StatusCancelled:
		return true
	default:
		return false
	}
}

// WinnerMatches compares a predicted winner against the recorded winner.
// Source data varies in casing, so the comparison is case-insensitive.
func (g Game) WinnerMatches(predicted string) bool {
	if g.Winner == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(predicted), strings.TrimSpace(*g.Winner))
}
