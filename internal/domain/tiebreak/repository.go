package tiebreak

import "context"

type Repository interface {
	Get(ctx context.Context, participantID, poolID string, season, seasonType, week int) (Answer, bool, error)
	ListByPoolWeek(ctx context.Context, poolID string, season, seasonType, week int) ([]Answer, error)
	Upsert(ctx context.Context, a Answer) error
}
