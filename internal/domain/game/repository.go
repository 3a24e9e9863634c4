package game

import "context"

// Repository exposes game persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Game, bool, error)
	ListByWeek(ctx context.Context, season, seasonType, week int) ([]Game, error)
	ListByWeekRange(ctx context.Context, season, seasonType, startWeek, endWeek int) ([]Game, error)
	Upsert(ctx context.Context, games []Game) error
}
