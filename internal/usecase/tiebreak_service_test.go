package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

func newResolver(games []game.Game, picks []pick.Pick, answers []tiebreak.Answer) *TieResolver {
	scoreSvc := NewScoreService(
		memory.NewGameRepository(games),
		memory.NewPickRepository(picks),
		memory.NewParticipantRepository(poolRoster()),
		memory.NewScoreRepository(),
		memory.NewWeeklyWinnerRepository(),
	)
	return NewTieResolver(scoreSvc, memory.NewTieBreakRepository(answers), ParticipantIDFallback{})
}

func weekAnswer(participantID string, week int, value float64) tiebreak.Answer {
	return tiebreak.Answer{
		ParticipantID: participantID,
		PoolID:        "pool-1",
		Season:        2026,
		SeasonType:    game.SeasonTypeRegular,
		Week:          week,
		Answer:        value,
	}
}

func tiedCandidates(ids ...string) []TieCandidate {
	out := make([]TieCandidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, TieCandidate{ParticipantScore: ParticipantScore{ParticipantID: id, Points: 30}})
	}
	return out
}

func TestResolveWeekly_CustomAnswerClosestWins(t *testing.T) {
	r := newResolver(nil, nil, []tiebreak.Answer{
		weekAnswer("p-alice", 4, 47),
		weekAnswer("p-bob", 4, 52),
	})

	outcome, err := r.ResolveWeekly(context.Background(), customPool(), tiedCandidates("p-bob", "p-alice"), 2026, game.SeasonTypeRegular, 4)
	require.NoError(t, err)

	require.Equal(t, "p-alice", outcome.Ordered[0].ParticipantID)
	require.True(t, outcome.Used)
	require.Equal(t, 45.0, *outcome.TargetAnswer)
	require.Equal(t, 47.0, *outcome.WinnerAnswer)
	require.Equal(t, 2.0, *outcome.Difference)
}

func TestResolveWeekly_MissingAnswerLosesButStaysRanked(t *testing.T) {
	r := newResolver(nil, nil, []tiebreak.Answer{
		weekAnswer("p-bob", 4, 90),
	})

	outcome, err := r.ResolveWeekly(context.Background(), customPool(), tiedCandidates("p-alice", "p-bob"), 2026, game.SeasonTypeRegular, 4)
	require.NoError(t, err)

	// Bob's guess is far off, but any answer beats no answer.
	require.Equal(t, "p-bob", outcome.Ordered[0].ParticipantID)
	require.Len(t, outcome.Ordered, 2)
	require.Equal(t, "p-alice", outcome.Ordered[1].ParticipantID)
}

func TestResolveWeekly_CustomWithoutPoolTargetFallsBack(t *testing.T) {
	p := customPool()
	p.TieBreakerAnswer = nil
	r := newResolver(nil, nil, nil)

	outcome, err := r.ResolveWeekly(context.Background(), p, tiedCandidates("p-bob", "p-alice"), 2026, game.SeasonTypeRegular, 4)
	require.NoError(t, err)

	require.True(t, outcome.Used)
	require.Nil(t, outcome.TargetAnswer)
	require.Equal(t, "p-alice", outcome.Ordered[0].ParticipantID, "deterministic fallback orders by id")
}

func TestResolveWeekly_TotalPointsUsesSeasonToDate(t *testing.T) {
	games, picks := weekSlate(1)
	g2, p2 := weekSlate(2)
	games = append(games, g2...)
	picks = append(picks, p2...)

	// One extra week 1 game only alice called correctly.
	games = append(games, finalGame("g-w1-x", 1, "SF"))
	picks = append(picks, pick.Pick{
		ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w1-x", PredictedWinner: "SF", ConfidencePoints: 3,
	})

	p := customPool()
	p.TieBreakMethod = pool.TieBreakTotalPoints
	r := newResolver(games, picks, nil)

	outcome, err := r.ResolveWeekly(context.Background(), p, tiedCandidates("p-bob", "p-alice"), 2026, game.SeasonTypeRegular, 2)
	require.NoError(t, err)

	require.Equal(t, "p-alice", outcome.Ordered[0].ParticipantID)
	require.Equal(t, 9, outcome.Ordered[0].SeasonPoints)
	require.True(t, outcome.Used)
}

func TestResolveWeekly_LastWeekPointsDecide(t *testing.T) {
	games := []game.Game{finalGame("g-w4-1", 4, "DAL")}
	picks := []pick.Pick{
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w4-1", PredictedWinner: "DAL", ConfidencePoints: 5},
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w4-1", PredictedWinner: "OPP", ConfidencePoints: 5},
	}

	p := customPool()
	p.TieBreakMethod = pool.TieBreakLastWeek
	r := newResolver(games, picks, nil)

	outcome, err := r.ResolveWeekly(context.Background(), p, tiedCandidates("p-alice", "p-bob"), 2026, game.SeasonTypeRegular, 5)
	require.NoError(t, err)

	require.Equal(t, "p-bob", outcome.Ordered[0].ParticipantID)
	require.Equal(t, 5, outcome.Ordered[0].LastWeekPoints)
}

func TestResolveWeekly_SingleCandidateShortCircuits(t *testing.T) {
	r := newResolver(nil, nil, nil)

	outcome, err := r.ResolveWeekly(context.Background(), customPool(), tiedCandidates("p-alice"), 2026, game.SeasonTypeRegular, 4)
	require.NoError(t, err)

	require.Len(t, outcome.Ordered, 1)
	require.False(t, outcome.Used)
}

func TestResolveWeekly_NoCandidatesIsInvalid(t *testing.T) {
	r := newResolver(nil, nil, nil)

	_, err := r.ResolveWeekly(context.Background(), customPool(), nil, 2026, game.SeasonTypeRegular, 4)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolvePeriod_WeeksWonDecides(t *testing.T) {
	candidates := tiedCandidates("p-alice", "p-bob")
	candidates[0].WeeksWon = 1
	candidates[1].WeeksWon = 3
	r := newResolver(nil, nil, nil)

	outcome, err := r.ResolvePeriod(context.Background(), customPool(), candidates, 2026, 4, false)
	require.NoError(t, err)

	require.Equal(t, "p-bob", outcome.Ordered[0].ParticipantID)
	require.True(t, outcome.Used)
}

func TestResolvePeriod_AnswerBreaksWeeksWonTie(t *testing.T) {
	candidates := tiedCandidates("p-alice", "p-bob")
	candidates[0].WeeksWon = 2
	candidates[1].WeeksWon = 2
	r := newResolver(nil, nil, []tiebreak.Answer{
		weekAnswer("p-alice", 4, 40),
		weekAnswer("p-bob", 4, 46),
	})

	outcome, err := r.ResolvePeriod(context.Background(), customPool(), candidates, 2026, 4, false)
	require.NoError(t, err)

	require.Equal(t, "p-bob", outcome.Ordered[0].ParticipantID, "46 is one off the target, 40 is five off")
	require.Equal(t, 1.0, *outcome.Difference)
}

func TestResolvePeriod_SuperBowlAnswerInFinalQuarter(t *testing.T) {
	candidates := tiedCandidates("p-alice", "p-bob")
	r := newResolver(nil, nil, []tiebreak.Answer{
		// Identical week 18 guesses; the playoff guess settles it.
		weekAnswer("p-alice", 18, 45),
		weekAnswer("p-bob", 18, 45),
		{ParticipantID: "p-alice", PoolID: "pool-1", Season: 2026, SeasonType: game.SuperBowlSeasonType, Week: game.SuperBowlWeek, Answer: 51},
		{ParticipantID: "p-bob", PoolID: "pool-1", Season: 2026, SeasonType: game.SuperBowlSeasonType, Week: game.SuperBowlWeek, Answer: 38},
	})

	outcome, err := r.ResolvePeriod(context.Background(), customPool(), candidates, 2026, 18, true)
	require.NoError(t, err)

	require.Equal(t, "p-alice", outcome.Ordered[0].ParticipantID, "51 is closer to 45 than 38")
}

func TestResolvePeriod_ExhaustedCriteriaUseFallback(t *testing.T) {
	candidates := tiedCandidates("p-carol", "p-bob", "p-alice")
	r := newResolver(nil, nil, nil)

	outcome, err := r.ResolvePeriod(context.Background(), customPool(), candidates, 2026, 9, false)
	require.NoError(t, err)

	require.True(t, outcome.Used)
	require.Equal(t, "p-alice", outcome.Ordered[0].ParticipantID)
	require.Len(t, outcome.Ordered, 3)
}
