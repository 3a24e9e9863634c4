package pick

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPickSet           = errors.New("pick set is empty")
	ErrConfidenceOutOfRange   = errors.New("confidence points out of range")
	ErrDuplicateConfidence    = errors.New("duplicate confidence points in week")
	ErrDuplicateGameInPickSet = errors.New("duplicate game in pick set")
	ErrMissingPredictedWinner = errors.New("predicted winner is required")
)

// ValidateWeeklySet validates one participant's full slate for a week:
// every game picked at most once, every confidence value in 1..gameCount
// and used exactly once.
func ValidateWeeklySet(picks []Pick, gameCount int) error {
	if len(picks) == 0 {
		return ErrEmptyPickSet
	}

	maxPoints := gameCount
	if maxPoints > MaxConfidencePoints {
		maxPoints = MaxConfidencePoints
	}

	gameSet := make(map[string]struct{}, len(picks))
	confidenceSet := make(map[int]struct{}, len(picks))
	for _, p := range picks {
		if p.GameID == "" {
			return fmt.Errorf("game id is required")
		}
		if _, exists := gameSet[p.GameID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateGameInPickSet, p.GameID)
		}
		gameSet[p.GameID] = struct{}{}

		if p.PredictedWinner == "" {
			return fmt.Errorf("%w: game=%s", ErrMissingPredictedWinner, p.GameID)
		}
		if p.ConfidencePoints < MinConfidencePoints || p.ConfidencePoints > maxPoints {
			return fmt.Errorf("%w: got %d, allowed %d..%d", ErrConfidenceOutOfRange, p.ConfidencePoints, MinConfidencePoints, maxPoints)
		}
		if _, exists := confidenceSet[p.ConfidencePoints]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateConfidence, p.ConfidencePoints)
		}
		confidenceSet[p.ConfidencePoints] = struct{}{}
	}

	return nil
}
