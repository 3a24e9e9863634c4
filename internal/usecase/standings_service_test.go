package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

type standingsHarness struct {
	svc     *StandingsService
	weekly  *memory.WeeklyWinnerRepository
	periods *memory.PeriodWinnerRepository
}

func newStandingsHarness(games []game.Game, picks []pick.Pick) standingsHarness {
	gameRepo := memory.NewGameRepository(games)
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	periodRepo := memory.NewPeriodWinnerRepository()
	scoreSvc := NewScoreService(
		gameRepo,
		memory.NewPickRepository(picks),
		memory.NewParticipantRepository(poolRoster()),
		memory.NewScoreRepository(),
		weeklyRepo,
	)
	gate := NewCompletionGate(gameRepo, weeklyRepo)
	// A nil cache store computes every read.
	svc := NewStandingsService(scoreSvc, gate, periodRepo, nil)
	return standingsHarness{svc: svc, weekly: weeklyRepo, periods: periodRepo}
}

func TestCurrentQuarterStandings_SplitsFinalizedAndRunningPoints(t *testing.T) {
	g1, p1 := weekSlate(1)
	g2, p2 := weekSlate(2)
	h := newStandingsHarness(append(g1, g2...), append(p1, p2...))

	// Week 1 is finalized; week 2 still counts as running points.
	require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
		PoolID: "pool-1", Season: 2026, Week: 1, ParticipantID: "p-alice",
	}))

	standings, err := h.svc.CurrentQuarterStandings(context.Background(), "pool-1", 2, 2026)
	require.NoError(t, err)

	require.Equal(t, winner.PeriodQ1, standings.PeriodName)
	require.Equal(t, 4, standings.EndWeek)
	require.False(t, standings.IsComplete)
	require.Equal(t, []int{1}, standings.CompletedWeeks)
	require.Len(t, standings.Standings, 3)

	alice := standings.Standings[0]
	require.Equal(t, "p-alice", alice.ParticipantID)
	require.Equal(t, 6, alice.TotalPoints)
	require.Equal(t, 3, alice.CurrentWeekPoints, "only the unfinalized week contributes running points")
	require.Equal(t, 1, alice.Rank)

	bob := standings.Standings[1]
	require.Equal(t, 1, bob.Rank, "tied totals share a rank")

	carol := standings.Standings[2]
	require.Equal(t, "p-carol", carol.ParticipantID)
	require.Equal(t, 3, carol.Rank)
}

func TestCurrentQuarterStandings_RejectsOffSeasonWeek(t *testing.T) {
	h := newStandingsHarness(nil, nil)

	_, err := h.svc.CurrentQuarterStandings(context.Background(), "pool-1", 22, 2026)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWeeklyLeaderboard_DelegatesToAggregator(t *testing.T) {
	games, picks := weekSlate(1)
	h := newStandingsHarness(games, picks)

	scores, err := h.svc.WeeklyLeaderboard(context.Background(), "pool-1", 2026, 1)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	require.Equal(t, "p-alice", scores[0].ParticipantID)
}

func TestListPeriodAvailability_TracksReachedCompleteCalculated(t *testing.T) {
	h := newStandingsHarness(nil, nil)

	for week := 1; week <= 4; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}
	require.NoError(t, h.periods.Upsert(context.Background(), winner.PeriodWinner{
		PoolID: "pool-1", Season: 2026, PeriodName: winner.PeriodQ1, ParticipantID: "p-alice",
	}))

	periods, err := h.svc.ListPeriodAvailability(context.Background(), "pool-1", 2026, 6)
	require.NoError(t, err)
	require.Len(t, periods, 4)

	q1 := periods[0]
	require.Equal(t, winner.PeriodQ1, q1.PeriodName)
	require.True(t, q1.Reached)
	require.True(t, q1.Complete)
	require.True(t, q1.Calculated)

	q2 := periods[1]
	require.False(t, q2.Reached, "week 6 has not reached the quarter's end week")
	require.False(t, q2.Complete)
	require.False(t, q2.Calculated)
}
