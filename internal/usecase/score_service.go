package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/score"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
)

// ParticipantScore is the aggregator output for one participant in scope.
type ParticipantScore struct {
	ParticipantID   string
	ParticipantName string
	Points          int
	CorrectPicks    int
	TotalPicks      int
	Rank            int
}

// WeekLine is one week's contribution inside a multi-week aggregation.
type WeekLine struct {
	Week         int
	Points       int
	CorrectPicks int
	TotalPicks   int
	Rank         int
}

// RangeScore aggregates a participant over an inclusive week range.
type RangeScore struct {
	ParticipantID     string
	ParticipantName   string
	TotalPoints       int
	TotalCorrectPicks int
	TotalPicks        int
	Rank              int
	Weekly            []WeekLine
}

// ScoreService joins picks to game results and produces per-participant
// totals. Aggregation reads only games and picks; materialized score rows are
// a cache the service can rebuild at any time.
type ScoreService struct {
	gameRepo         game.Repository
	pickRepo         pick.Repository
	participantRepo  participant.Repository
	scoreRepo        score.Repository
	weeklyWinnerRepo winner.WeeklyRepository
	now              func() time.Time
}

func NewScoreService(
	gameRepo game.Repository,
	pickRepo pick.Repository,
	participantRepo participant.Repository,
	scoreRepo score.Repository,
	weeklyWinnerRepo winner.WeeklyRepository,
) *ScoreService {
	return &ScoreService{
		gameRepo:         gameRepo,
		pickRepo:         pickRepo,
		participantRepo:  participantRepo,
		scoreRepo:        scoreRepo,
		weeklyWinnerRepo: weeklyWinnerRepo,
		now:              time.Now,
	}
}

// AggregateWeek scores every participant with at least one pick in the week.
// Participants without picks are excluded, not zero-filled.
func (s *ScoreService) AggregateWeek(ctx context.Context, poolID string, season, seasonType, week int) ([]ParticipantScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.AggregateWeek")
	defer span.End()

	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	games, err := s.gameRepo.ListByWeek(ctx, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list games for week %d: %w", week, err)
	}
	if len(games) == 0 {
		return nil, nil
	}

	return s.aggregateGames(ctx, poolID, games)
}

// AggregateRange scores an inclusive week range, keeping per-week lines so
// period exports can show the weekly breakdown.
func (s *ScoreService) AggregateRange(ctx context.Context, poolID string, season, seasonType, startWeek, endWeek int) ([]RangeScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.AggregateRange")
	defer span.End()

	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}
	if startWeek > endWeek {
		return nil, fmt.Errorf("%w: start week %d after end week %d", ErrInvalidInput, startWeek, endWeek)
	}

	byParticipant := make(map[string]*RangeScore)
	for week := startWeek; week <= endWeek; week++ {
		weekScores, err := s.AggregateWeek(ctx, poolID, season, seasonType, week)
		if err != nil {
			return nil, err
		}
		for _, ws := range weekScores {
			entry, ok := byParticipant[ws.ParticipantID]
			if !ok {
				entry = &RangeScore{
					ParticipantID:   ws.ParticipantID,
					ParticipantName: ws.ParticipantName,
				}
				byParticipant[ws.ParticipantID] = entry
			}
			entry.TotalPoints += ws.Points
			entry.TotalCorrectPicks += ws.CorrectPicks
			entry.TotalPicks += ws.TotalPicks
			entry.Weekly = append(entry.Weekly, WeekLine{
				Week:         week,
				Points:       ws.Points,
				CorrectPicks: ws.CorrectPicks,
				TotalPicks:   ws.TotalPicks,
				Rank:         ws.Rank,
			})
		}
	}

	out := make([]RangeScore, 0, len(byParticipant))
	for _, entry := range byParticipant {
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	assignRangeRanks(out)

	return out, nil
}

// WeeksWon counts weekly winner rows per participant inside the range. It is
// never derived from raw points because weekly winner determination involves
// tie-breaking the raw sum does not capture.
func (s *ScoreService) WeeksWon(ctx context.Context, poolID string, season, startWeek, endWeek int) (map[string]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.WeeksWon")
	defer span.End()

	rows, err := s.weeklyWinnerRepo.ListByWeekRange(ctx, poolID, season, startWeek, endWeek)
	if err != nil {
		return nil, fmt.Errorf("list weekly winners for weeks won: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ParticipantID]++
	}
	return counts, nil
}

// MaterializeWeek recomputes and replaces the cached score rows for a week.
func (s *ScoreService) MaterializeWeek(ctx context.Context, poolID string, season, seasonType, week int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.MaterializeWeek")
	defer span.End()

	scores, err := s.AggregateWeek(ctx, poolID, season, seasonType, week)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	rows := make([]score.WeeklyScore, 0, len(scores))
	for _, ps := range scores {
		rows = append(rows, score.WeeklyScore{
			ParticipantID: ps.ParticipantID,
			PoolID:        poolID,
			Season:        season,
			Week:          week,
			Points:        ps.Points,
			CorrectPicks:  ps.CorrectPicks,
			TotalPicks:    ps.TotalPicks,
			Rank:          ps.Rank,
			CalculatedAt:  now,
		})
	}

	if err := s.scoreRepo.ReplaceWeek(ctx, poolID, season, week, rows); err != nil {
		return fmt.Errorf("replace week %d scores: %w", week, err)
	}
	return nil
}

func (s *ScoreService) aggregateGames(ctx context.Context, poolID string, games []game.Game) ([]ParticipantScore, error) {
	gameByID := make(map[string]game.Game, len(games))
	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameByID[g.ID] = g
		gameIDs = append(gameIDs, g.ID)
	}

	picks, err := s.pickRepo.ListByPoolAndGames(ctx, poolID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("list picks for pool %s: %w", poolID, err)
	}
	if len(picks) == 0 {
		return nil, nil
	}

	participants, err := s.participantRepo.ListActiveByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list participants for pool %s: %w", poolID, err)
	}
	nameByID := make(map[string]string, len(participants))
	for _, p := range participants {
		nameByID[p.ID] = p.Name
	}

	totals := make(map[string]*ParticipantScore)
	for _, pk := range picks {
		g, ok := gameByID[pk.GameID]
		if !ok {
			continue
		}
		entry, ok := totals[pk.ParticipantID]
		if !ok {
			entry = &ParticipantScore{
				ParticipantID:   pk.ParticipantID,
				ParticipantName: nameByID[pk.ParticipantID],
			}
			totals[pk.ParticipantID] = entry
		}
		entry.TotalPicks++
		if g.WinnerMatches(pk.PredictedWinner) {
			entry.CorrectPicks++
			entry.Points += pk.ConfidencePoints
		}
	}

	out := make([]ParticipantScore, 0, len(totals))
	for _, entry := range totals {
		out = append(out, *entry)
	}
	sortAndRankScores(out)

	return out, nil
}

// sortAndRankScores orders by points descending with participant id as a
// stable tiebreak, then assigns ranks sharing position on equal points.
func sortAndRankScores(scores []ParticipantScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		return scores[i].ParticipantID < scores[j].ParticipantID
	})

	for i := range scores {
		if i > 0 && scores[i].Points == scores[i-1].Points {
			scores[i].Rank = scores[i-1].Rank
			continue
		}
		scores[i].Rank = i + 1
	}
}

func assignRangeRanks(scores []RangeScore) {
	for i := range scores {
		if i > 0 && scores[i].TotalPoints == scores[i-1].TotalPoints {
			scores[i].Rank = scores[i-1].Rank
			continue
		}
		scores[i].Rank = i + 1
	}
}

// TopScorers returns every score tied at the maximum points value. A zero
// maximum returns nothing: zero points never wins, even uncontested.
func TopScorers(scores []ParticipantScore) []ParticipantScore {
	if len(scores) == 0 {
		return nil
	}

	maxPoints := scores[0].Points
	for _, s := range scores[1:] {
		if s.Points > maxPoints {
			maxPoints = s.Points
		}
	}
	if maxPoints <= 0 {
		return nil
	}

	top := make([]ParticipantScore, 0, 1)
	for _, s := range scores {
		if s.Points == maxPoints {
			top = append(top, s)
		}
	}
	return top
}
