package usecase

import (
	"context"
	"testing"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

func TestWeekGamesComplete(t *testing.T) {
	cases := []struct {
		name  string
		games []game.Game
		want  bool
	}{
		{name: "empty schedule is never complete", games: nil, want: false},
		{
			name: "all finished",
			games: []game.Game{
				{Status: game.StatusFinal},
				{Status: game.StatusCancelled},
				{Status: "POST"},
			},
			want: true,
		},
		{
			name: "one live game holds the week open",
			games: []game.Game{
				{Status: game.StatusFinal},
				{Status: "halftime"},
			},
			want: false,
		},
		{
			name: "postponed counts as finished",
			games: []game.Game{
				{Status: game.StatusFinal},
				{Status: "postponed"},
			},
			want: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekGamesComplete(tc.games); got != tc.want {
				t.Fatalf("unexpected completion: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestPeriodComplete_ReportsMissingWeeks(t *testing.T) {
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	gate := NewCompletionGate(memory.NewGameRepository(nil), weeklyRepo)

	for _, week := range []int{1, 2, 4} {
		err := weeklyRepo.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		})
		if err != nil {
			t.Fatalf("seed weekly winner: %v", err)
		}
	}

	complete, completed, err := gate.PeriodComplete(context.Background(), "pool-1", 2026, 1, 4)
	if err != nil {
		t.Fatalf("period check: %v", err)
	}
	if complete {
		t.Fatal("week 3 has no winner, period must stay open")
	}
	if len(completed) != 3 || completed[0] != 1 || completed[2] != 4 {
		t.Fatalf("unexpected completed weeks: %v", completed)
	}
}

func TestCompletedWeeksInSeason(t *testing.T) {
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	gate := NewCompletionGate(memory.NewGameRepository(nil), weeklyRepo)

	for _, week := range []int{1, 2, 5} {
		err := weeklyRepo.Upsert(context.Background(), winner.WeeklyWinner{
			PoolID: "pool-1", Season: 2026, Week: week, ParticipantID: "p-alice",
		})
		if err != nil {
			t.Fatalf("seed weekly winner: %v", err)
		}
	}

	got, err := gate.CompletedWeeksInSeason(context.Background(), "pool-1", 2026)
	if err != nil {
		t.Fatalf("season count: %v", err)
	}
	if got != 3 {
		t.Fatalf("unexpected completed weeks: got=%d want=3", got)
	}
}
