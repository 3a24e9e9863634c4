package usecase

import (
	"context"
	"fmt"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
)

// CompletionGate decides whether a scope is closed and a winner may be
// finalized. Weeks close on game status; periods close on the weekly winner
// rows already written through this same gate, so a period can never finalize
// before its weeks do.
type CompletionGate struct {
	gameRepo         game.Repository
	weeklyWinnerRepo winner.WeeklyRepository
}

func NewCompletionGate(gameRepo game.Repository, weeklyWinnerRepo winner.WeeklyRepository) *CompletionGate {
	return &CompletionGate{
		gameRepo:         gameRepo,
		weeklyWinnerRepo: weeklyWinnerRepo,
	}
}

// WeekGamesComplete reports whether every game in the set has finished. An
// empty set is never complete; that prevents declaring a winner for a week
// whose schedule was never loaded.
func WeekGamesComplete(games []game.Game) bool {
	if len(games) == 0 {
		return false
	}
	for _, g := range games {
		if !game.IsFinishedStatus(g.Status) {
			return false
		}
	}
	return true
}

func (c *CompletionGate) WeekComplete(ctx context.Context, season, seasonType, week int) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompletionGate.WeekComplete")
	defer span.End()

	games, err := c.gameRepo.ListByWeek(ctx, season, seasonType, week)
	if err != nil {
		return false, fmt.Errorf("list games for completion check: %w", err)
	}
	return WeekGamesComplete(games), nil
}

// PeriodComplete reports whether a weekly winner exists for every week in the
// range, and returns the weeks that do have one.
func (c *CompletionGate) PeriodComplete(ctx context.Context, poolID string, season, startWeek, endWeek int) (bool, []int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompletionGate.PeriodComplete")
	defer span.End()

	rows, err := c.weeklyWinnerRepo.ListByWeekRange(ctx, poolID, season, startWeek, endWeek)
	if err != nil {
		return false, nil, fmt.Errorf("list weekly winners for period check: %w", err)
	}

	have := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		have[row.Week] = struct{}{}
	}

	completed := make([]int, 0, endWeek-startWeek+1)
	complete := true
	for week := startWeek; week <= endWeek; week++ {
		if _, ok := have[week]; ok {
			completed = append(completed, week)
			continue
		}
		complete = false
	}
	return complete, completed, nil
}

// CompletedWeeksInSeason counts weeks with a finalized weekly winner across
// the regular season.
func (c *CompletionGate) CompletedWeeksInSeason(ctx context.Context, poolID string, season int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompletionGate.CompletedWeeksInSeason")
	defer span.End()

	rows, err := c.weeklyWinnerRepo.ListBySeason(ctx, poolID, season)
	if err != nil {
		return 0, fmt.Errorf("list weekly winners for season check: %w", err)
	}
	return len(rows), nil
}
