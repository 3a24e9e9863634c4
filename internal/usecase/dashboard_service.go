package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
)

type Dashboard struct {
	Season          int
	CurrentWeek     int
	SelectedPoolID  string
	PoolName        string
	LiveGameCount   int
	CompletedWeeks  []int
	TotalPoints     int
	CorrectPicks    int
	Rank            int
	ParticipantRank bool
}

type DashboardService struct {
	poolRepo pool.Repository
	gameRepo game.Repository
	scoreSvc *ScoreService
	gate     *CompletionGate
	now      func() time.Time
}

func NewDashboardService(
	poolRepo pool.Repository,
	gameRepo game.Repository,
	scoreSvc *ScoreService,
	gate *CompletionGate,
) *DashboardService {
	return &DashboardService{
		poolRepo: poolRepo,
		gameRepo: gameRepo,
		scoreSvc: scoreSvc,
		gate:     gate,
		now:      time.Now,
	}
}

// Get assembles the landing-page summary for a participant: which week is
// active, how the pool is progressing, and where the participant stands in
// the season running totals.
func (s *DashboardService) Get(ctx context.Context, poolID, participantID string, season int) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	selected, err := s.resolvePool(ctx, poolID, season)
	if err != nil {
		return Dashboard{}, err
	}

	games, err := s.gameRepo.ListByWeekRange(ctx, selected.Season, game.SeasonTypeRegular, 1, game.MaxWeeksRegularSeason)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list games for dashboard: %w", err)
	}

	now := s.now().UTC()
	currentWeek := resolveCurrentWeek(games, now)

	liveCount := 0
	for _, g := range games {
		if g.Week == currentWeek && game.IsLiveStatus(g.Status) {
			liveCount++
		}
	}

	_, completedWeeks, err := s.gate.PeriodComplete(ctx, selected.ID, selected.Season, 1, game.MaxWeeksRegularSeason)
	if err != nil {
		return Dashboard{}, fmt.Errorf("resolve completed weeks for dashboard: %w", err)
	}

	dashboard := Dashboard{
		Season:         selected.Season,
		CurrentWeek:    currentWeek,
		SelectedPoolID: selected.ID,
		PoolName:       selected.Name,
		LiveGameCount:  liveCount,
		CompletedWeeks: completedWeeks,
	}

	if strings.TrimSpace(participantID) == "" {
		return dashboard, nil
	}

	totals, err := s.scoreSvc.AggregateRange(ctx, selected.ID, selected.Season, game.SeasonTypeRegular, 1, game.MaxWeeksRegularSeason)
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate season totals for dashboard: %w", err)
	}
	for _, row := range totals {
		if row.ParticipantID == participantID {
			dashboard.TotalPoints = row.TotalPoints
			dashboard.CorrectPicks = row.TotalCorrectPicks
			dashboard.Rank = row.Rank
			dashboard.ParticipantRank = true
			break
		}
	}

	return dashboard, nil
}

func (s *DashboardService) resolvePool(ctx context.Context, poolID string, season int) (pool.Pool, error) {
	poolID = strings.TrimSpace(poolID)
	if poolID != "" {
		p, exists, err := s.poolRepo.GetByID(ctx, poolID)
		if err != nil {
			return pool.Pool{}, fmt.Errorf("get pool for dashboard: %w", err)
		}
		if !exists {
			return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
		}
		return p, nil
	}

	if season <= 0 {
		season = s.now().UTC().Year()
	}
	pools, err := s.poolRepo.ListBySeason(ctx, season)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("list pools for dashboard: %w", err)
	}
	if len(pools) == 0 {
		return pool.Pool{}, fmt.Errorf("%w: no pools for season %d", ErrNotFound, season)
	}
	return pools[0], nil
}

// resolveCurrentWeek picks the week a viewer cares about right now: the
// earliest week with a live game, else the earliest week still unplayed,
// else the last known week.
func resolveCurrentWeek(games []game.Game, now time.Time) int {
	if len(games) == 0 {
		return 1
	}

	liveMin := 0
	upcomingMin := 0
	lastKnown := 0

	for _, g := range games {
		if g.Week <= 0 {
			continue
		}
		if g.Week > lastKnown {
			lastKnown = g.Week
		}

		if game.IsLiveStatus(g.Status) {
			if liveMin == 0 || g.Week < liveMin {
				liveMin = g.Week
			}
			continue
		}
		if game.IsFinishedStatus(g.Status) {
			continue
		}

		if g.KickoffAt.IsZero() || !g.KickoffAt.Before(now) {
			if upcomingMin == 0 || g.Week < upcomingMin {
				upcomingMin = g.Week
			}
			continue
		}

		// Kickoff has passed but the feed has not flipped the status yet;
		// treat it as the active week.
		if upcomingMin == 0 || g.Week < upcomingMin {
			upcomingMin = g.Week
		}
	}

	if liveMin > 0 {
		return liveMin
	}
	if upcomingMin > 0 {
		return upcomingMin
	}
	if lastKnown > 0 {
		return lastKnown
	}

	return 1
}
