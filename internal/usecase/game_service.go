package usecase

import (
	"context"
	"fmt"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
)

type GameService struct {
	gameRepo game.Repository
	teamRepo team.Repository
}

func NewGameService(gameRepo game.Repository, teamRepo team.Repository) *GameService {
	return &GameService{
		gameRepo: gameRepo,
		teamRepo: teamRepo,
	}
}

func (s *GameService) ListWeek(ctx context.Context, season, seasonType, week int) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListWeek")
	defer span.End()

	if season <= 0 {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if seasonType == 0 {
		seasonType = game.SeasonTypeRegular
	}
	if week < 1 {
		return nil, fmt.Errorf("%w: week is required", ErrInvalidInput)
	}
	if seasonType == game.SeasonTypeRegular && week > game.MaxWeeksRegularSeason {
		return nil, fmt.Errorf("%w: regular season has %d weeks", ErrInvalidInput, game.MaxWeeksRegularSeason)
	}

	games, err := s.gameRepo.ListByWeek(ctx, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *GameService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListTeams")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}
