package winner

import "context"

// WeeklyRepository stores weekly winner records. Upsert keys on
// (pool_id, week, season) so recomputation overwrites, never duplicates.
type WeeklyRepository interface {
	Get(ctx context.Context, poolID string, season, week int) (WeeklyWinner, bool, error)
	ListBySeason(ctx context.Context, poolID string, season int) ([]WeeklyWinner, error)
	ListByWeekRange(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]WeeklyWinner, error)
	Upsert(ctx context.Context, w WeeklyWinner) error
	Delete(ctx context.Context, poolID string, season, week int) error
}

type PeriodRepository interface {
	Get(ctx context.Context, poolID string, season int, periodName string) (PeriodWinner, bool, error)
	ListBySeason(ctx context.Context, poolID string, season int) ([]PeriodWinner, error)
	Upsert(ctx context.Context, w PeriodWinner) error
	Delete(ctx context.Context, poolID string, season int, periodName string) error
}

type SeasonRepository interface {
	Get(ctx context.Context, poolID string, season int) (SeasonWinner, bool, error)
	Upsert(ctx context.Context, w SeasonWinner) error
	Delete(ctx context.Context, poolID string, season int) error
}
