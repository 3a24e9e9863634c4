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

type scoreHarness struct {
	svc    *ScoreService
	scores *memory.ScoreRepository
	weekly *memory.WeeklyWinnerRepository
}

func newScoreHarness(games []game.Game, picks []pick.Pick) scoreHarness {
	scoreRepo := memory.NewScoreRepository()
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	svc := NewScoreService(
		memory.NewGameRepository(games),
		memory.NewPickRepository(picks),
		memory.NewParticipantRepository(poolRoster()),
		scoreRepo,
		weeklyRepo,
	)
	return scoreHarness{svc: svc, scores: scoreRepo, weekly: weeklyRepo}
}

func TestAggregateWeek_SumsConfidenceOnCorrectPicks(t *testing.T) {
	tied := finalGame("g-w3-3", 3, "BUF")
	tied.Winner = nil
	games := []game.Game{
		finalGame("g-w3-1", 3, "DAL"),
		finalGame("g-w3-2", 3, "KC"),
		tied,
	}
	picks := []pick.Pick{
		// Source data is inconsistently cased; " dal " still matches DAL.
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w3-1", PredictedWinner: " dal ", ConfidencePoints: 3},
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w3-2", PredictedWinner: "KC", ConfidencePoints: 2},
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w3-3", PredictedWinner: "BUF", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w3-1", PredictedWinner: "DAL", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w3-2", PredictedWinner: "OPP", ConfidencePoints: 3},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w3-3", PredictedWinner: "BUF", ConfidencePoints: 2},
	}
	h := newScoreHarness(games, picks)

	scores, err := h.svc.AggregateWeek(context.Background(), "pool-1", 2026, game.SeasonTypeRegular, 3)
	require.NoError(t, err)

	// Carol placed no picks and is excluded rather than zero-filled; the
	// tied game pays nobody.
	require.Len(t, scores, 2)

	require.Equal(t, "p-alice", scores[0].ParticipantID)
	require.Equal(t, "Alice", scores[0].ParticipantName)
	require.Equal(t, 5, scores[0].Points)
	require.Equal(t, 2, scores[0].CorrectPicks)
	require.Equal(t, 3, scores[0].TotalPicks)
	require.Equal(t, 1, scores[0].Rank)

	require.Equal(t, "p-bob", scores[1].ParticipantID)
	require.Equal(t, 1, scores[1].Points)
	require.Equal(t, 1, scores[1].CorrectPicks)
	require.Equal(t, 2, scores[1].Rank)
}

func TestAggregateWeek_NilWhenWeekHasNoGames(t *testing.T) {
	h := newScoreHarness(nil, nil)

	scores, err := h.svc.AggregateWeek(context.Background(), "pool-1", 2026, game.SeasonTypeRegular, 12)
	require.NoError(t, err)
	require.Nil(t, scores)
}

func TestAggregateWeek_RequiresPoolID(t *testing.T) {
	h := newScoreHarness(nil, nil)

	_, err := h.svc.AggregateWeek(context.Background(), "", 2026, game.SeasonTypeRegular, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSortAndRankScores_SharesRankOnEqualPoints(t *testing.T) {
	scores := []ParticipantScore{
		{ParticipantID: "p-bob", Points: 10},
		{ParticipantID: "p-alice", Points: 10},
		{ParticipantID: "p-carol", Points: 4},
	}

	sortAndRankScores(scores)

	require.Equal(t, "p-alice", scores[0].ParticipantID)
	require.Equal(t, 1, scores[0].Rank)
	require.Equal(t, "p-bob", scores[1].ParticipantID)
	require.Equal(t, 1, scores[1].Rank)
	require.Equal(t, "p-carol", scores[2].ParticipantID)
	require.Equal(t, 3, scores[2].Rank)
}

func TestAggregateRange_AccumulatesWeeklyLines(t *testing.T) {
	var games []game.Game
	var picks []pick.Pick
	for week := 1; week <= 2; week++ {
		g, p := weekSlate(week)
		games = append(games, g...)
		picks = append(picks, p...)
	}
	h := newScoreHarness(games, picks)

	scores, err := h.svc.AggregateRange(context.Background(), "pool-1", 2026, game.SeasonTypeRegular, 1, 2)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	require.Equal(t, "p-alice", scores[0].ParticipantID)
	require.Equal(t, 6, scores[0].TotalPoints)
	require.Equal(t, 4, scores[0].TotalCorrectPicks)
	require.Equal(t, 6, scores[0].TotalPicks)
	require.Equal(t, 1, scores[0].Rank)
	require.Len(t, scores[0].Weekly, 2)
	require.Equal(t, 1, scores[0].Weekly[0].Week)
	require.Equal(t, 3, scores[0].Weekly[0].Points)

	require.Equal(t, "p-bob", scores[1].ParticipantID)
	require.Equal(t, 1, scores[1].Rank, "equal totals share the rank")

	require.Equal(t, "p-carol", scores[2].ParticipantID)
	require.Equal(t, 0, scores[2].TotalPoints)
	require.Equal(t, 3, scores[2].Rank)
}

func TestAggregateRange_RejectsInvertedRange(t *testing.T) {
	h := newScoreHarness(nil, nil)

	_, err := h.svc.AggregateRange(context.Background(), "pool-1", 2026, game.SeasonTypeRegular, 5, 3)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWeeksWon_CountsWinnerRowsNotPoints(t *testing.T) {
	h := newScoreHarness(nil, nil)
	for _, row := range []winner.WeeklyWinner{
		{PoolID: "pool-1", Season: 2026, Week: 1, ParticipantID: "p-alice"},
		{PoolID: "pool-1", Season: 2026, Week: 2, ParticipantID: "p-bob"},
		{PoolID: "pool-1", Season: 2026, Week: 3, ParticipantID: "p-alice"},
		{PoolID: "pool-1", Season: 2026, Week: 9, ParticipantID: "p-alice"},
	} {
		require.NoError(t, h.weekly.Upsert(context.Background(), row))
	}

	counts, err := h.svc.WeeksWon(context.Background(), "pool-1", 2026, 1, 4)
	require.NoError(t, err)

	require.Equal(t, 2, counts["p-alice"], "week 9 is outside the range")
	require.Equal(t, 1, counts["p-bob"])
}

func TestMaterializeWeek_ReplacesCachedRows(t *testing.T) {
	games, picks := weekSlate(2)
	h := newScoreHarness(games, picks)

	require.NoError(t, h.svc.MaterializeWeek(context.Background(), "pool-1", 2026, game.SeasonTypeRegular, 2))

	rows, err := h.scores.ListByPoolWeek(context.Background(), "pool-1", 2026, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "p-alice", rows[0].ParticipantID)
	require.Equal(t, 3, rows[0].Points)
	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, "p-bob", rows[1].ParticipantID)
	require.Equal(t, 1, rows[1].Rank)
	require.Equal(t, "p-carol", rows[2].ParticipantID)
	require.Equal(t, 0, rows[2].Points)
	require.Equal(t, 3, rows[2].Rank)
	require.False(t, rows[0].CalculatedAt.IsZero())
}
