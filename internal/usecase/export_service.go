package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/valyala/bytebufferpool"
)

// ExportService renders aggregator output and raw pick joins as CSV. It is a
// formatting consumer: correctness rules match the scorer exactly.
type ExportService struct {
	gameRepo        game.Repository
	pickRepo        pick.Repository
	participantRepo participant.Repository
	scoreService    *ScoreService
}

func NewExportService(
	gameRepo game.Repository,
	pickRepo pick.Repository,
	participantRepo participant.Repository,
	scoreService *ScoreService,
) *ExportService {
	return &ExportService{
		gameRepo:        gameRepo,
		pickRepo:        pickRepo,
		participantRepo: participantRepo,
		scoreService:    scoreService,
	}
}

// WeeklyPicksCSV renders every pick in the week with its outcome.
func (s *ExportService) WeeklyPicksCSV(ctx context.Context, poolID string, season, week int) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.WeeklyPicksCSV")
	defer span.End()

	games, err := s.gameRepo.ListByWeek(ctx, season, game.SeasonTypeRegular, week)
	if err != nil {
		return nil, fmt.Errorf("list games for export: %w", err)
	}
	gameByID := make(map[string]game.Game, len(games))
	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameByID[g.ID] = g
		gameIDs = append(gameIDs, g.ID)
	}

	picks, err := s.pickRepo.ListByPoolAndGames(ctx, poolID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("list picks for export: %w", err)
	}

	participants, err := s.participantRepo.ListActiveByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list participants for export: %w", err)
	}
	nameByID := make(map[string]string, len(participants))
	for _, p := range participants {
		nameByID[p.ID] = p.Name
	}

	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].ParticipantID != picks[j].ParticipantID {
			return nameByID[picks[i].ParticipantID] < nameByID[picks[j].ParticipantID]
		}
		return picks[i].ConfidencePoints > picks[j].ConfidencePoints
	})

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	header := []string{"participant", "matchup", "predicted_winner", "confidence_points", "winner", "is_correct", "points_earned"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for _, pk := range picks {
		g, ok := gameByID[pk.GameID]
		if !ok {
			continue
		}
		correct := g.WinnerMatches(pk.PredictedWinner)
		earned := 0
		if correct {
			earned = pk.ConfidencePoints
		}
		recordedWinner := ""
		if g.Winner != nil {
			recordedWinner = *g.Winner
		}
		row := []string{
			nameByID[pk.ParticipantID],
			g.AwayTeam + " @ " + g.HomeTeam,
			pk.PredictedWinner,
			strconv.Itoa(pk.ConfidencePoints),
			recordedWinner,
			strconv.FormatBool(correct),
			strconv.Itoa(earned),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}

	return append([]byte(nil), buf.B...), nil
}

// PeriodCSV renders period totals with the per-week breakdown columns.
func (s *ExportService) PeriodCSV(ctx context.Context, poolID string, season int, periodName string) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.PeriodCSV")
	defer span.End()

	startWeek, endWeek, ok := winner.PeriodRange(periodName)
	if !ok {
		return nil, fmt.Errorf("%w: period %q", ErrInvalidInput, periodName)
	}

	scores, err := s.scoreService.AggregateRange(ctx, poolID, season, game.SeasonTypeRegular, startWeek, endWeek)
	if err != nil {
		return nil, err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	header := []string{"rank", "participant", "total_points", "total_correct_picks", "total_picks"}
	for week := startWeek; week <= endWeek; week++ {
		prefix := "week_" + strconv.Itoa(week)
		header = append(header, prefix+"_points", prefix+"_correct", prefix+"_rank")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write period header: %w", err)
	}

	for _, rs := range scores {
		lineByWeek := make(map[int]WeekLine, len(rs.Weekly))
		for _, line := range rs.Weekly {
			lineByWeek[line.Week] = line
		}

		row := []string{
			strconv.Itoa(rs.Rank),
			rs.ParticipantName,
			strconv.Itoa(rs.TotalPoints),
			strconv.Itoa(rs.TotalCorrectPicks),
			strconv.Itoa(rs.TotalPicks),
		}
		for week := startWeek; week <= endWeek; week++ {
			line, ok := lineByWeek[week]
			if !ok {
				row = append(row, "0", "0", "")
				continue
			}
			row = append(row, strconv.Itoa(line.Points), strconv.Itoa(line.CorrectPicks), strconv.Itoa(line.Rank))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write period row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush period export: %w", err)
	}

	return append([]byte(nil), buf.B...), nil
}
