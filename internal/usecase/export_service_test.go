package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

func newExportService(games []game.Game, picks []pick.Pick) *ExportService {
	gameRepo := memory.NewGameRepository(games)
	pickRepo := memory.NewPickRepository(picks)
	participantRepo := memory.NewParticipantRepository(poolRoster())
	scoreSvc := NewScoreService(
		gameRepo,
		pickRepo,
		participantRepo,
		memory.NewScoreRepository(),
		memory.NewWeeklyWinnerRepository(),
	)
	return NewExportService(gameRepo, pickRepo, participantRepo, scoreSvc)
}

func parseCSV(t *testing.T, raw []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWeeklyPicksCSV_RendersOutcomePerPick(t *testing.T) {
	games := []game.Game{finalGame("g-w1-1", 1, "DAL")}
	picks := []pick.Pick{
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w1-1", PredictedWinner: "NYG", ConfidencePoints: 3},
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w1-1", PredictedWinner: "DAL", ConfidencePoints: 5},
	}
	svc := newExportService(games, picks)

	raw, err := svc.WeeklyPicksCSV(context.Background(), "pool-1", 2026, 1)
	require.NoError(t, err)

	rows := parseCSV(t, raw)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"participant", "matchup", "predicted_winner", "confidence_points", "winner", "is_correct", "points_earned"}, rows[0])

	// Rows come out ordered by participant name.
	require.Equal(t, []string{"Alice", "OPP @ DAL", "DAL", "5", "DAL", "true", "5"}, rows[1])
	require.Equal(t, []string{"Bob", "OPP @ DAL", "NYG", "3", "DAL", "false", "0"}, rows[2])
}

func TestWeeklyPicksCSV_EmptyWeekStillHasHeader(t *testing.T) {
	svc := newExportService(nil, nil)

	raw, err := svc.WeeklyPicksCSV(context.Background(), "pool-1", 2026, 1)
	require.NoError(t, err)

	rows := parseCSV(t, raw)
	require.Len(t, rows, 1)
}

func TestPeriodCSV_BreaksDownWeeks(t *testing.T) {
	var games []game.Game
	var picks []pick.Pick
	for week := 1; week <= 4; week++ {
		g, p := weekSlate(week)
		games = append(games, g...)
		picks = append(picks, p...)
	}
	svc := newExportService(games, picks)

	raw, err := svc.PeriodCSV(context.Background(), "pool-1", 2026, "Q1")
	require.NoError(t, err)

	rows := parseCSV(t, raw)
	require.Len(t, rows, 4, "header plus one row per scored participant")

	header := rows[0]
	require.Equal(t, "rank", header[0])
	require.Contains(t, header, "week_1_points")
	require.Contains(t, header, "week_4_rank")
	require.Len(t, header, 5+4*3)

	// Alice and Bob tie on 12; Carol trails at 0.
	require.Equal(t, "1", rows[1][0])
	require.Equal(t, "Alice", rows[1][1])
	require.Equal(t, "12", rows[1][2])
	require.Equal(t, "1", rows[2][0])
	require.Equal(t, "Bob", rows[2][1])
	require.Equal(t, "3", rows[3][0])
	require.Equal(t, "Carol", rows[3][1])
}

func TestPeriodCSV_RejectsUnknownPeriod(t *testing.T) {
	svc := newExportService(nil, nil)

	_, err := svc.PeriodCSV(context.Background(), "pool-1", 2026, "H1")
	require.ErrorIs(t, err, ErrInvalidInput)
}
