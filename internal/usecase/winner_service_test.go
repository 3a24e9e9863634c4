package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
)

func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }

func finalGame(id string, week int, winningTeam string) game.Game {
	return game.Game{
		ID:         id,
		Season:     2026,
		SeasonType: game.SeasonTypeRegular,
		Week:       week,
		HomeTeam:   winningTeam,
		AwayTeam:   "OPP",
		Status:     game.StatusFinal,
		Winner:     strPtr(winningTeam),
		KickoffAt:  time.Date(2026, time.September, 10+week, 17, 0, 0, 0, time.UTC),
	}
}

// winnerHarness wires a WinnerService against in-memory repositories with the
// deterministic fallback so assertions never depend on shuffle order.
type winnerHarness struct {
	svc     *WinnerService
	weekly  *memory.WeeklyWinnerRepository
	periods *memory.PeriodWinnerRepository
	seasons *memory.SeasonWinnerRepository
}

func newWinnerHarness(
	pools []pool.Pool,
	participants []participant.Participant,
	games []game.Game,
	picks []pick.Pick,
	answers []tiebreak.Answer,
) winnerHarness {
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	periodRepo := memory.NewPeriodWinnerRepository()
	seasonRepo := memory.NewSeasonWinnerRepository()
	gameRepo := memory.NewGameRepository(games)

	scoreSvc := NewScoreService(
		gameRepo,
		memory.NewPickRepository(picks),
		memory.NewParticipantRepository(participants),
		memory.NewScoreRepository(),
		weeklyRepo,
	)
	gate := NewCompletionGate(gameRepo, weeklyRepo)
	resolver := NewTieResolver(scoreSvc, memory.NewTieBreakRepository(answers), ParticipantIDFallback{})

	svc := NewWinnerService(
		memory.NewPoolRepository(pools),
		weeklyRepo,
		periodRepo,
		seasonRepo,
		scoreSvc,
		gate,
		resolver,
		logging.NewNop(),
	)
	return winnerHarness{svc: svc, weekly: weeklyRepo, periods: periodRepo, seasons: seasonRepo}
}

func customPool() pool.Pool {
	return pool.Pool{
		ID:                 "pool-1",
		Name:               "Office Pool",
		Season:             2026,
		Type:               pool.TypeNormal,
		TieBreakMethod:     pool.TieBreakCustom,
		TieBreakerQuestion: "Total points in the Monday night game?",
		TieBreakerAnswer:   f64Ptr(45),
	}
}

func poolRoster() []participant.Participant {
	return []participant.Participant{
		{ID: "p-alice", PoolID: "pool-1", Name: "Alice", Active: true},
		{ID: "p-bob", PoolID: "pool-1", Name: "Bob", Active: true},
		{ID: "p-carol", PoolID: "pool-1", Name: "Carol", Active: true},
	}
}

// weekSlate returns two finished games for the week plus a full set of picks:
// alice and bob both score 3 on opposite confidence splits, carol backs the
// losers and scores 0.
func weekSlate(week int) ([]game.Game, []pick.Pick) {
	g1 := fmt.Sprintf("g-w%d-1", week)
	g2 := fmt.Sprintf("g-w%d-2", week)
	games := []game.Game{
		finalGame(g1, week, "DAL"),
		finalGame(g2, week, "KC"),
	}
	picks := []pick.Pick{
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: g1, PredictedWinner: "DAL", ConfidencePoints: 2},
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: g2, PredictedWinner: "KC", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: g1, PredictedWinner: "DAL", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: g2, PredictedWinner: "KC", ConfidencePoints: 2},
		{ParticipantID: "p-carol", PoolID: "pool-1", GameID: g1, PredictedWinner: "OPP", ConfidencePoints: 2},
		{ParticipantID: "p-carol", PoolID: "pool-1", GameID: g2, PredictedWinner: "OPP", ConfidencePoints: 1},
	}
	return games, picks
}

func TestWeeklyWinner_StoredRecordWins(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)
	stored := winner.WeeklyWinner{
		PoolID:        "pool-1",
		Season:        2026,
		Week:          1,
		ParticipantID: "p-stored",
		Points:        12,
	}
	require.NoError(t, h.weekly.Upsert(context.Background(), stored))

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 1)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-stored", res.Value.ParticipantID)
	require.Equal(t, 12, res.Value.Points)
}

func TestWeeklyWinner_PendingUntilEveryGameFinishes(t *testing.T) {
	games, picks := weekSlate(6)
	games[1].Status = game.StatusInProgress
	games[1].Winner = nil
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 6)

	require.Equal(t, ResultPending, res.State)

	_, found, err := h.weekly.Get(context.Background(), "pool-1", 2026, 6)
	require.NoError(t, err)
	require.False(t, found, "pending weeks must not persist a record")
}

func TestWeeklyWinner_NoQualifyingWinnerAtZeroPoints(t *testing.T) {
	games := []game.Game{finalGame("g-w7-1", 7, "DAL")}
	picks := []pick.Pick{
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w7-1", PredictedWinner: "OPP", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w7-1", PredictedWinner: "OPP", ConfidencePoints: 1},
	}
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 7)

	require.Equal(t, ResultNoQualifyingWinner, res.State)
}

func TestWeeklyWinner_CoWinnersOnOrdinaryWeek(t *testing.T) {
	// Week 5 does not close a quarter, so a normal pool records the tied set
	// through its first member and leaves the tie-breaker unused.
	games, picks := weekSlate(5)
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 5)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-alice", res.Value.ParticipantID)
	require.Equal(t, 3, res.Value.Points)
	require.False(t, res.Value.TieBreak.Used)
	require.Equal(t, 3, res.Value.TotalParticipants)
}

func TestWeeklyWinner_TieBreakOnPeriodEndWeek(t *testing.T) {
	games, picks := weekSlate(4)
	answers := []tiebreak.Answer{
		{ParticipantID: "p-alice", PoolID: "pool-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 4, Answer: 47},
		{ParticipantID: "p-bob", PoolID: "pool-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 4, Answer: 52},
	}
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, answers)

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 4)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-alice", res.Value.ParticipantID, "47 is closer to 45 than 52")
	require.True(t, res.Value.TieBreak.Used)
	require.Equal(t, "Total points in the Monday night game?", res.Value.TieBreak.Question)
	require.NotNil(t, res.Value.TieBreak.TargetAnswer)
	require.Equal(t, 45.0, *res.Value.TieBreak.TargetAnswer)
	require.NotNil(t, res.Value.TieBreak.WinnerAnswer)
	require.Equal(t, 47.0, *res.Value.TieBreak.WinnerAnswer)
	require.NotNil(t, res.Value.TieBreak.Difference)
	require.Equal(t, 2.0, *res.Value.TieBreak.Difference)

	persisted, found, err := h.weekly.Get(context.Background(), "pool-1", 2026, 4)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "p-alice", persisted.ParticipantID)
}

func TestWeeklyWinner_KnockoutPoolBreaksEveryTie(t *testing.T) {
	p := customPool()
	p.Type = pool.TypeKnockout
	games, picks := weekSlate(5)
	answers := []tiebreak.Answer{
		{ParticipantID: "p-alice", PoolID: "pool-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 5, Answer: 60},
		{ParticipantID: "p-bob", PoolID: "pool-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 5, Answer: 44},
	}
	h := newWinnerHarness([]pool.Pool{p}, poolRoster(), games, picks, answers)

	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 5)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-bob", res.Value.ParticipantID, "44 beats 60 against a target of 45")
	require.True(t, res.Value.TieBreak.Used)
}

func TestWeeklyWinner_InvalidateForcesRecompute(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)
	require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
		PoolID: "pool-1", Season: 2026, Week: 2, ParticipantID: "p-stale",
	}))

	require.NoError(t, h.svc.InvalidateWeeklyWinner(context.Background(), "pool-1", 2026, 2))

	// No games exist for the week, so the recompute lands on pending instead
	// of resurrecting the stale record.
	res := h.svc.GetOrCalculateWeeklyWinner(context.Background(), "pool-1", 2026, 2)
	require.Equal(t, ResultPending, res.State)
}

func TestPeriodWinner_PendingWhenAWeekIsUnresolved(t *testing.T) {
	var games []game.Game
	var picks []pick.Pick
	for week := 1; week <= 4; week++ {
		g, p := weekSlate(week)
		games = append(games, g...)
		picks = append(picks, p...)
	}
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	// Weeks 1-3 have winner rows; week 4 is still open.
	for week := 1; week <= 3; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}

	res := h.svc.GetOrCalculatePeriodWinner(context.Background(), "pool-1", 2026, winner.PeriodQ1)

	require.Equal(t, ResultPending, res.State)
}

func TestPeriodWinner_AggregatesTheQuarter(t *testing.T) {
	var games []game.Game
	var picks []pick.Pick
	for week := 1; week <= 4; week++ {
		g, p := weekSlate(week)
		games = append(games, g...)
		// Bob drops one pick per week from 3 points to 2 so alice leads
		// outright across the quarter.
		for i := range p {
			if p[i].ParticipantID == "p-bob" && p[i].ConfidencePoints == 1 {
				p[i].PredictedWinner = "OPP"
			}
		}
		picks = append(picks, p...)
	}
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	for week := 1; week <= 4; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}

	res := h.svc.GetOrCalculatePeriodWinner(context.Background(), "pool-1", 2026, winner.PeriodQ1)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, winner.PeriodQ1, res.Value.PeriodName)
	require.Equal(t, "p-alice", res.Value.ParticipantID)
	require.Equal(t, 12, res.Value.TotalPoints)
	require.Equal(t, 8, res.Value.TotalCorrectPicks)
	require.Equal(t, 4, res.Value.WeeksWon)
	require.False(t, res.Value.TieBreak.Used)

	persisted, found, err := h.periods.Get(context.Background(), "pool-1", 2026, winner.PeriodQ1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "p-alice", persisted.ParticipantID)
}

func TestPeriodWinner_RejectsUnknownPeriodName(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)

	res := h.svc.GetOrCalculatePeriodWinner(context.Background(), "pool-1", 2026, "Q5")

	require.Equal(t, ResultStorageError, res.State)
	require.ErrorIs(t, res.Err, ErrInvalidInput)
}

func TestSeasonWinner_PendingBelowMinimumCompletedWeeks(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)
	for week := 1; week <= 3; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}

	res := h.svc.GetOrCalculateSeasonWinner(context.Background(), "pool-1", 2026)

	require.Equal(t, ResultPending, res.State)
}

func TestSeasonWinner_PendingUntilAllEighteenWeeksResolve(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)
	for week := 1; week <= 6; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}
	h.svc.SetSeasonMinCompletedWeeks(2)

	res := h.svc.GetOrCalculateSeasonWinner(context.Background(), "pool-1", 2026)

	require.Equal(t, ResultPending, res.State)
}

func TestSeasonWinner_ComputesAcrossTheFullSeason(t *testing.T) {
	var games []game.Game
	var picks []pick.Pick
	for week := 1; week <= game.MaxWeeksRegularSeason; week++ {
		g, p := weekSlate(week)
		games = append(games, g...)
		// Bob drops one pick per week from 3 points to 2 so alice leads
		// the season outright.
		for i := range p {
			if p[i].ParticipantID == "p-bob" && p[i].ConfidencePoints == 1 {
				p[i].PredictedWinner = "OPP"
			}
		}
		picks = append(picks, p...)
	}
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), games, picks, nil)

	for week := 1; week <= game.MaxWeeksRegularSeason; week++ {
		require.NoError(t, h.weekly.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		}))
	}

	calculatedAt := time.Date(2027, time.January, 10, 3, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return calculatedAt }

	res := h.svc.GetOrCalculateSeasonWinner(context.Background(), "pool-1", 2026)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-alice", res.Value.ParticipantID)
	require.Equal(t, "Alice", res.Value.ParticipantName)
	require.Equal(t, 54, res.Value.TotalPoints)
	require.Equal(t, 36, res.Value.TotalCorrectPicks)
	require.Equal(t, 18, res.Value.WeeksWon)
	require.Equal(t, 3, res.Value.TotalParticipants)
	require.False(t, res.Value.TieBreak.Used)
	require.Equal(t, calculatedAt, res.Value.CalculatedAt)

	persisted, found, err := h.seasons.Get(context.Background(), "pool-1", 2026)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "p-alice", persisted.ParticipantID)

	// A later read serves the stored record instead of recomputing.
	h.svc.now = func() time.Time { return calculatedAt.Add(48 * time.Hour) }
	again := h.svc.GetOrCalculateSeasonWinner(context.Background(), "pool-1", 2026)
	require.Equal(t, ResultReady, again.State)
	require.Equal(t, res.Value, again.Value)
}

func TestSeasonWinner_StoredRecordWins(t *testing.T) {
	h := newWinnerHarness([]pool.Pool{customPool()}, poolRoster(), nil, nil, nil)
	require.NoError(t, h.seasons.Upsert(context.Background(), winner.SeasonWinner{
		PoolID: "pool-1", Season: 2026, ParticipantID: "p-carol", TotalPoints: 180,
	}))

	res := h.svc.GetOrCalculateSeasonWinner(context.Background(), "pool-1", 2026)

	require.Equal(t, ResultReady, res.State)
	require.Equal(t, "p-carol", res.Value.ParticipantID)
	require.Equal(t, 180, res.Value.TotalPoints)
}
