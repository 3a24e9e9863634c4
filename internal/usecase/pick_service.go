package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
)

type PickService struct {
	poolRepo        pool.Repository
	participantRepo participant.Repository
	gameRepo        game.Repository
	pickRepo        pick.Repository
	tiebreakRepo    tiebreak.Repository
	now             func() time.Time
}

func NewPickService(
	poolRepo pool.Repository,
	participantRepo participant.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	tiebreakRepo tiebreak.Repository,
) *PickService {
	return &PickService{
		poolRepo:        poolRepo,
		participantRepo: participantRepo,
		gameRepo:        gameRepo,
		pickRepo:        pickRepo,
		tiebreakRepo:    tiebreakRepo,
		now:             time.Now,
	}
}

type WeeklyPickInput struct {
	GameID           string
	PredictedWinner  string
	ConfidencePoints int
}

type SubmitWeeklyPicksInput struct {
	ParticipantID string
	PoolID        string
	Season        int
	SeasonType    int
	Week          int
	Picks         []WeeklyPickInput
}

// SubmitWeeklyPicks replaces a participant's slate for one week. The full
// slate is validated as a unit so confidence values stay unique, and games
// that have already kicked off are locked.
func (s *PickService) SubmitWeeklyPicks(ctx context.Context, input SubmitWeeklyPicksInput) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitWeeklyPicks")
	defer span.End()

	member, err := s.resolveMembership(ctx, input.ParticipantID, input.PoolID)
	if err != nil {
		return nil, err
	}

	seasonType := input.SeasonType
	if seasonType == 0 {
		seasonType = game.SeasonTypeRegular
	}
	games, err := s.gameRepo.ListByWeek(ctx, input.Season, seasonType, input.Week)
	if err != nil {
		return nil, fmt.Errorf("list games for picks: %w", err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no games scheduled for season %d week %d", ErrNotFound, input.Season, input.Week)
	}

	gamesByID := make(map[string]game.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	now := s.now().UTC()
	picks := make([]pick.Pick, 0, len(input.Picks))
	for _, item := range input.Picks {
		g, ok := gamesByID[item.GameID]
		if !ok {
			return nil, fmt.Errorf("%w: game %s is not in week %d", ErrInvalidInput, item.GameID, input.Week)
		}
		if !g.KickoffAt.IsZero() && !now.Before(g.KickoffAt) {
			return nil, fmt.Errorf("%w: game %s has already started", ErrInvalidInput, g.ID)
		}
		picks = append(picks, pick.Pick{
			ParticipantID:    member.ID,
			PoolID:           member.PoolID,
			GameID:           item.GameID,
			PredictedWinner:  strings.TrimSpace(item.PredictedWinner),
			ConfidencePoints: item.ConfidencePoints,
			SubmittedAt:      now,
			UpdatedAt:        now,
		})
	}

	if err := pick.ValidateWeeklySet(picks, len(games)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}
	if err := s.pickRepo.DeleteByParticipantAndGames(ctx, member.ID, member.PoolID, gameIDs); err != nil {
		return nil, fmt.Errorf("clear previous picks: %w", err)
	}
	if err := s.pickRepo.Upsert(ctx, picks); err != nil {
		return nil, fmt.Errorf("store picks: %w", err)
	}

	return picks, nil
}

// UnlockPicks removes a participant's slate for a week so it can be
// resubmitted. Intended for pool admins fixing mistakes.
func (s *PickService) UnlockPicks(ctx context.Context, participantID, poolID string, season, seasonType, week int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.UnlockPicks")
	defer span.End()

	member, err := s.resolveMembership(ctx, participantID, poolID)
	if err != nil {
		return err
	}

	if seasonType == 0 {
		seasonType = game.SeasonTypeRegular
	}
	games, err := s.gameRepo.ListByWeek(ctx, season, seasonType, week)
	if err != nil {
		return fmt.Errorf("list games for unlock: %w", err)
	}

	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}
	if err := s.pickRepo.DeleteByParticipantAndGames(ctx, member.ID, member.PoolID, gameIDs); err != nil {
		return fmt.Errorf("delete picks: %w", err)
	}
	return nil
}

type SubmitTieBreakAnswerInput struct {
	ParticipantID string
	PoolID        string
	Season        int
	SeasonType    int
	Week          int
	Answer        float64
}

func (s *PickService) SubmitTieBreakAnswer(ctx context.Context, input SubmitTieBreakAnswerInput) (tiebreak.Answer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitTieBreakAnswer")
	defer span.End()

	member, err := s.resolveMembership(ctx, input.ParticipantID, input.PoolID)
	if err != nil {
		return tiebreak.Answer{}, err
	}
	if input.Season <= 0 || input.Week < 1 {
		return tiebreak.Answer{}, fmt.Errorf("%w: season and week are required", ErrInvalidInput)
	}

	seasonType := input.SeasonType
	if seasonType == 0 {
		seasonType = game.SeasonTypeRegular
	}
	answer := tiebreak.Answer{
		ParticipantID: member.ID,
		PoolID:        member.PoolID,
		Season:        input.Season,
		SeasonType:    seasonType,
		Week:          input.Week,
		Answer:        input.Answer,
		SubmittedAt:   s.now().UTC(),
	}
	if err := s.tiebreakRepo.Upsert(ctx, answer); err != nil {
		return tiebreak.Answer{}, fmt.Errorf("store tie-break answer: %w", err)
	}
	return answer, nil
}

func (s *PickService) resolveMembership(ctx context.Context, participantID, poolID string) (participant.Participant, error) {
	participantID = strings.TrimSpace(participantID)
	poolID = strings.TrimSpace(poolID)
	if participantID == "" || poolID == "" {
		return participant.Participant{}, fmt.Errorf("%w: participant id and pool id are required", ErrInvalidInput)
	}

	if _, exists, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		return participant.Participant{}, fmt.Errorf("get pool: %w", err)
	} else if !exists {
		return participant.Participant{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	member, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	if !exists || member.PoolID != poolID {
		return participant.Participant{}, fmt.Errorf("%w: participant=%s in pool=%s", ErrNotFound, participantID, poolID)
	}
	if !member.Active {
		return participant.Participant{}, fmt.Errorf("%w: participant=%s is inactive", ErrInvalidInput, participantID)
	}
	return member, nil
}
