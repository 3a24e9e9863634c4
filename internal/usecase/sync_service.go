package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/rawdata"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
	"github.com/pickemlabs/confidence-pool/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
)

// ScoreboardProvider fetches one week of games from the upstream scoreboard
// API, returning the mapped games and the raw payload for the audit store.
type ScoreboardProvider interface {
	FetchWeekGames(ctx context.Context, season, seasonType, week int) ([]game.Game, rawdata.Payload, error)
}

const (
	defaultSyncEnsureInterval = 60 * time.Second
	defaultSyncConcurrency    = 4
)

// SyncService pulls scoreboard data into the game store. Repeated calls for
// the same week inside the ensure interval are skipped, and concurrent calls
// collapse through single-flight.
type SyncService struct {
	provider     ScoreboardProvider
	gameRepo     game.Repository
	teamRepo     team.Repository
	rawDataRepo  rawdata.Repository
	logger       *logging.Logger
	now          func() time.Time
	ensureFlight resilience.SingleFlight
	ensureMu     sync.Mutex
	lastSyncAt   map[string]time.Time
	interval     time.Duration
	concurrency  int
}

func NewSyncService(
	provider ScoreboardProvider,
	gameRepo game.Repository,
	teamRepo team.Repository,
	rawDataRepo rawdata.Repository,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		provider:    provider,
		gameRepo:    gameRepo,
		teamRepo:    teamRepo,
		rawDataRepo: rawDataRepo,
		logger:      logger,
		now:         time.Now,
		lastSyncAt:  make(map[string]time.Time),
		interval:    defaultSyncEnsureInterval,
		concurrency: defaultSyncConcurrency,
	}
}

// SyncWeek fetches and upserts one week's games.
func (s *SyncService) SyncWeek(ctx context.Context, season, seasonType, week int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncWeek")
	defer span.End()

	key := fmt.Sprintf("sync:%d:%d:%d", season, seasonType, week)
	now := s.now().UTC()
	if s.shouldSkipSync(key, now) {
		return nil
	}

	_, err, _ := s.ensureFlight.Do(key, func() (any, error) {
		runNow := s.now().UTC()
		if s.shouldSkipSync(key, runNow) {
			return nil, nil
		}
		if runErr := s.syncWeekOnce(ctx, season, seasonType, week); runErr != nil {
			return nil, runErr
		}
		s.markSync(key, runNow)
		return nil, nil
	})
	return err
}

// SyncWeeks fans a list of weeks out over a bounded worker group.
func (s *SyncService) SyncWeeks(ctx context.Context, season, seasonType int, weeks []int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncWeeks")
	defer span.End()

	if len(weeks) == 0 {
		return fmt.Errorf("%w: weeks are required", ErrInvalidInput)
	}

	group := pool.New().WithErrors().WithMaxGoroutines(s.concurrency)
	for _, week := range weeks {
		group.Go(func() error {
			if err := s.SyncWeek(ctx, season, seasonType, week); err != nil {
				return fmt.Errorf("sync week %d: %w", week, err)
			}
			return nil
		})
	}
	return group.Wait()
}

func (s *SyncService) syncWeekOnce(ctx context.Context, season, seasonType, week int) error {
	games, payload, err := s.provider.FetchWeekGames(ctx, season, seasonType, week)
	if err != nil {
		return fmt.Errorf("%w: fetch scoreboard: %v", ErrDependencyUnavailable, err)
	}
	if len(games) == 0 {
		s.logger.InfoContext(ctx, "scoreboard returned no games", "season", season, "season_type", seasonType, "week", week)
		return nil
	}

	if err := s.gameRepo.Upsert(ctx, games); err != nil {
		return fmt.Errorf("upsert games: %w", err)
	}

	if payload.PayloadJSON != "" {
		if err := s.rawDataRepo.UpsertMany(ctx, []rawdata.Payload{payload}); err != nil {
			// Raw payload storage is best-effort; a failure must not block
			// the game upsert that already happened.
			s.logger.WarnContext(ctx, "store raw scoreboard payload", "error", err, "week", week)
		}
	}

	teams := teamsFromGames(games)
	if len(teams) > 0 {
		if err := s.teamRepo.UpsertMany(ctx, teams); err != nil {
			s.logger.WarnContext(ctx, "upsert teams from scoreboard", "error", err, "week", week)
		}
	}

	s.logger.InfoContext(ctx, "scoreboard week synced", "season", season, "season_type", seasonType, "week", week, "games", len(games))
	return nil
}

func (s *SyncService) shouldSkipSync(key string, now time.Time) bool {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	last, ok := s.lastSyncAt[key]
	return ok && now.Sub(last) < s.interval
}

func (s *SyncService) markSync(key string, now time.Time) {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	s.lastSyncAt[key] = now
}

func teamsFromGames(games []game.Game) []team.Team {
	seen := make(map[string]struct{}, len(games)*2)
	out := make([]team.Team, 0, len(games)*2)
	for _, g := range games {
		for _, name := range []string{g.HomeTeam, g.AwayTeam} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, team.Team{ID: name, Name: name})
		}
	}
	return out
}
