package memory

import (
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
)

const (
	PoolIDDemoOffice   = "office-pool-2025"
	PoolIDDemoKnockout = "knockout-pool-2025"

	SeedSeason = 2025
)

func SeedPools() []pool.Pool {
	target := 45.0
	return []pool.Pool{
		{
			ID:                 PoolIDDemoOffice,
			Name:               "Office Pool",
			Season:             SeedSeason,
			Type:               pool.TypeNormal,
			TieBreakMethod:     pool.TieBreakCustom,
			TieBreakerQuestion: "Total points in the Monday night game",
			TieBreakerAnswer:   &target,
		},
		{
			ID:             PoolIDDemoKnockout,
			Name:           "Knockout Pool",
			Season:         SeedSeason,
			Type:           pool.TypeKnockout,
			TieBreakMethod: pool.TieBreakTotalPoints,
		},
	}
}

func SeedParticipants() []participant.Participant {
	joined := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	names := map[string]string{
		"part-alice": "Alice",
		"part-bob":   "Bob",
		"part-carol": "Carol",
		"part-dan":   "Dan",
	}
	out := make([]participant.Participant, 0, 2*len(names))
	for _, poolID := range []string{PoolIDDemoOffice, PoolIDDemoKnockout} {
		for id, name := range names {
			out = append(out, participant.Participant{
				ID:       poolID + ":" + id,
				PoolID:   poolID,
				Name:     name,
				Active:   true,
				JoinedAt: joined,
			})
		}
	}
	return out
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "kc", Name: "Kansas City Chiefs", Abbreviation: "KC"},
		{ID: "buf", Name: "Buffalo Bills", Abbreviation: "BUF"},
		{ID: "phi", Name: "Philadelphia Eagles", Abbreviation: "PHI"},
		{ID: "dal", Name: "Dallas Cowboys", Abbreviation: "DAL"},
		{ID: "sf", Name: "San Francisco 49ers", Abbreviation: "SF"},
		{ID: "det", Name: "Detroit Lions", Abbreviation: "DET"},
		{ID: "bal", Name: "Baltimore Ravens", Abbreviation: "BAL"},
		{ID: "gb", Name: "Green Bay Packers", Abbreviation: "GB"},
	}
}

func SeedGames() []game.Game {
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	return []game.Game{
		seedFinal("2025-w1-phi-dal", 1, "Philadelphia Eagles", "Dallas Cowboys", 24, 20, kickoff),
		seedFinal("2025-w1-kc-buf", 1, "Kansas City Chiefs", "Buffalo Bills", 27, 31, kickoff.Add(3*time.Hour)),
		seedFinal("2025-w1-sf-det", 1, "San Francisco 49ers", "Detroit Lions", 17, 23, kickoff.Add(6*time.Hour)),
		{
			ID:         "2025-w2-bal-gb",
			Season:     SeedSeason,
			SeasonType: game.SeasonTypeRegular,
			Week:       2,
			HomeTeam:   "Baltimore Ravens",
			AwayTeam:   "Green Bay Packers",
			Status:     game.StatusScheduled,
			KickoffAt:  kickoff.Add(7 * 24 * time.Hour),
		},
	}
}

func seedFinal(id string, week int, home, away string, homeScore, awayScore int, kickoff time.Time) game.Game {
	winnerName := home
	if awayScore > homeScore {
		winnerName = away
	}
	return game.Game{
		ID:         id,
		Season:     SeedSeason,
		SeasonType: game.SeasonTypeRegular,
		Week:       week,
		HomeTeam:   home,
		AwayTeam:   away,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
		Status:     game.StatusFinal,
		Winner:     &winnerName,
		KickoffAt:  kickoff,
		UpdatedAt:  kickoff.Add(4 * time.Hour),
	}
}
