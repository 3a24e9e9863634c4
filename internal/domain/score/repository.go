package score

import "context"

type Repository interface {
	ListByPoolWeek(ctx context.Context, poolID string, season, week int) ([]WeeklyScore, error)
	ListByPoolWeekRange(ctx context.Context, poolID string, season, startWeek, endWeek int) ([]WeeklyScore, error)
	ReplaceWeek(ctx context.Context, poolID string, season, week int, scores []WeeklyScore) error
}
