package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/platform/cache"
)

// QuarterStanding is one live leaderboard row for a quarter in progress.
type QuarterStanding struct {
	ParticipantID     string
	ParticipantName   string
	TotalPoints       int
	TotalCorrectPicks int
	CurrentWeekPoints int
	Rank              int
}

// QuarterStandings is the non-finalizing view of a quarter: cumulative totals
// over its finalized weeks plus the in-progress week's running points.
type QuarterStandings struct {
	PoolID         string
	Season         int
	PeriodName     string
	EndWeek        int
	IsComplete     bool
	CompletedWeeks []int
	Standings      []QuarterStanding
}

// PeriodAvailability describes one quarter's state for a pool.
type PeriodAvailability struct {
	PeriodName string
	StartWeek  int
	EndWeek    int
	Reached    bool
	Complete   bool
	Calculated bool
}

// StandingsService serves live leaderboard reads. It never writes winner
// records; finalization stays with the WinnerService.
type StandingsService struct {
	scoreService     *ScoreService
	gate             *CompletionGate
	periodWinnerRepo winner.PeriodRepository
	cacheStore       *cache.Store
}

func NewStandingsService(
	scoreService *ScoreService,
	gate *CompletionGate,
	periodWinnerRepo winner.PeriodRepository,
	cacheStore *cache.Store,
) *StandingsService {
	return &StandingsService{
		scoreService:     scoreService,
		gate:             gate,
		periodWinnerRepo: periodWinnerRepo,
		cacheStore:       cacheStore,
	}
}

// CurrentQuarterStandings computes live standings for the quarter ending at
// quarterEndWeek. Partial weeks contribute their current running points.
func (s *StandingsService) CurrentQuarterStandings(ctx context.Context, poolID string, quarterEndWeek, season int) (QuarterStandings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.CurrentQuarterStandings")
	defer span.End()

	periodName, ok := winner.PeriodForWeek(quarterEndWeek)
	if !ok {
		return QuarterStandings{}, fmt.Errorf("%w: week %d is outside the regular season", ErrInvalidInput, quarterEndWeek)
	}
	startWeek, endWeek, _ := winner.PeriodRange(periodName)

	key := fmt.Sprintf("standings:quarter:%s:%d:%s", poolID, season, periodName)
	value, err := s.cacheStore.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.computeQuarterStandings(ctx, poolID, season, periodName, startWeek, endWeek)
	})
	if err != nil {
		return QuarterStandings{}, err
	}

	standings, ok := value.(QuarterStandings)
	if !ok {
		return QuarterStandings{}, fmt.Errorf("unexpected cached standings type %T", value)
	}
	return standings, nil
}

func (s *StandingsService) computeQuarterStandings(ctx context.Context, poolID string, season int, periodName string, startWeek, endWeek int) (QuarterStandings, error) {
	complete, completedWeeks, err := s.gate.PeriodComplete(ctx, poolID, season, startWeek, endWeek)
	if err != nil {
		return QuarterStandings{}, err
	}

	out := QuarterStandings{
		PoolID:         poolID,
		Season:         season,
		PeriodName:     periodName,
		EndWeek:        endWeek,
		IsComplete:     complete,
		CompletedWeeks: completedWeeks,
	}

	byParticipant := make(map[string]*QuarterStanding)
	for week := startWeek; week <= endWeek; week++ {
		weekScores, err := s.scoreService.AggregateWeek(ctx, poolID, season, game.SeasonTypeRegular, week)
		if err != nil {
			return QuarterStandings{}, err
		}
		finalized := containsWeek(completedWeeks, week)
		for _, ws := range weekScores {
			entry, ok := byParticipant[ws.ParticipantID]
			if !ok {
				entry = &QuarterStanding{
					ParticipantID:   ws.ParticipantID,
					ParticipantName: ws.ParticipantName,
				}
				byParticipant[ws.ParticipantID] = entry
			}
			entry.TotalPoints += ws.Points
			entry.TotalCorrectPicks += ws.CorrectPicks
			if !finalized {
				entry.CurrentWeekPoints += ws.Points
			}
		}
	}

	standings := make([]QuarterStanding, 0, len(byParticipant))
	for _, entry := range byParticipant {
		standings = append(standings, *entry)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].ParticipantID < standings[j].ParticipantID
	})
	for i := range standings {
		if i > 0 && standings[i].TotalPoints == standings[i-1].TotalPoints {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}

	out.Standings = standings
	return out, nil
}

// WeeklyLeaderboard returns the ranked aggregator output for one week.
func (s *StandingsService) WeeklyLeaderboard(ctx context.Context, poolID string, season, week int) ([]ParticipantScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.WeeklyLeaderboard")
	defer span.End()

	return s.scoreService.AggregateWeek(ctx, poolID, season, game.SeasonTypeRegular, week)
}

// ListPeriodAvailability reports per quarter whether the pool has reached it,
// completed it, and already calculated its winner.
func (s *StandingsService) ListPeriodAvailability(ctx context.Context, poolID string, season, currentWeek int) ([]PeriodAvailability, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListPeriodAvailability")
	defer span.End()

	calculated, err := s.periodWinnerRepo.ListBySeason(ctx, poolID, season)
	if err != nil {
		return nil, fmt.Errorf("list period winners for availability: %w", err)
	}
	calculatedSet := make(map[string]struct{}, len(calculated))
	for _, row := range calculated {
		calculatedSet[row.PeriodName] = struct{}{}
	}

	periods := []string{winner.PeriodQ1, winner.PeriodQ2, winner.PeriodQ3, winner.PeriodQ4}
	out := make([]PeriodAvailability, 0, len(periods))
	for _, name := range periods {
		startWeek, endWeek, _ := winner.PeriodRange(name)
		complete, _, err := s.gate.PeriodComplete(ctx, poolID, season, startWeek, endWeek)
		if err != nil {
			return nil, err
		}
		_, isCalculated := calculatedSet[name]
		out = append(out, PeriodAvailability{
			PeriodName: name,
			StartWeek:  startWeek,
			EndWeek:    endWeek,
			Reached:    currentWeek >= endWeek,
			Complete:   complete,
			Calculated: isCalculated,
		})
	}
	return out, nil
}

func containsWeek(weeks []int, week int) bool {
	for _, w := range weeks {
		if w == week {
			return true
		}
	}
	return false
}
