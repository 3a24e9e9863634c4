package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
)

// ResultState tags a winner calculation outcome so callers can distinguish
// "not finished yet" from "finished with no qualifying winner" from failure.
type ResultState string

const (
	ResultReady              ResultState = "ready"
	ResultPending            ResultState = "pending"
	ResultNoQualifyingWinner ResultState = "no_qualifying_winner"
	ResultStorageError       ResultState = "error"
)

// Result wraps a winner record with its calculation state. Value is set only
// when State is ResultReady.
type Result[T any] struct {
	State ResultState
	Value T
	Err   error
}

func ready[T any](value T) Result[T] { return Result[T]{State: ResultReady, Value: value} }
func pending[T any]() Result[T]      { return Result[T]{State: ResultPending} }
func noWinner[T any]() Result[T]     { return Result[T]{State: ResultNoQualifyingWinner} }
func failed[T any](err error) Result[T] {
	return Result[T]{State: ResultStorageError, Err: err}
}

const defaultSeasonMinCompletedWeeks = 4

// WinnerService orchestrates the aggregator, completion gate, and tie
// resolver into cache-first winner calculations. A stored record is returned
// as-is and never silently recomputed; forced recomputation goes through the
// Invalidate methods.
type WinnerService struct {
	poolRepo         pool.Repository
	weeklyWinnerRepo winner.WeeklyRepository
	periodWinnerRepo winner.PeriodRepository
	seasonWinnerRepo winner.SeasonRepository
	scoreService     *ScoreService
	gate             *CompletionGate
	resolver         *TieResolver
	logger           *logging.Logger
	seasonMinWeeks   int
	now              func() time.Time
}

func NewWinnerService(
	poolRepo pool.Repository,
	weeklyWinnerRepo winner.WeeklyRepository,
	periodWinnerRepo winner.PeriodRepository,
	seasonWinnerRepo winner.SeasonRepository,
	scoreService *ScoreService,
	gate *CompletionGate,
	resolver *TieResolver,
	logger *logging.Logger,
) *WinnerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WinnerService{
		poolRepo:         poolRepo,
		weeklyWinnerRepo: weeklyWinnerRepo,
		periodWinnerRepo: periodWinnerRepo,
		seasonWinnerRepo: seasonWinnerRepo,
		scoreService:     scoreService,
		gate:             gate,
		resolver:         resolver,
		logger:           logger,
		seasonMinWeeks:   defaultSeasonMinCompletedWeeks,
		now:              time.Now,
	}
}

// SetSeasonMinCompletedWeeks overrides the minimum finalized weeks required
// before a season winner may be calculated.
func (s *WinnerService) SetSeasonMinCompletedWeeks(weeks int) {
	if weeks > 0 {
		s.seasonMinWeeks = weeks
	}
}

// GetOrCalculateWeeklyWinner returns the stored weekly winner or computes,
// persists, and returns it once every game that week has finished.
func (s *WinnerService) GetOrCalculateWeeklyWinner(ctx context.Context, poolID string, season, week int) Result[winner.WeeklyWinner] {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.GetOrCalculateWeeklyWinner")
	defer span.End()

	existing, found, err := s.weeklyWinnerRepo.Get(ctx, poolID, season, week)
	if err != nil {
		s.logger.ErrorContext(ctx, "read weekly winner", "error", err, "pool_id", poolID, "week", week)
		return failed[winner.WeeklyWinner](err)
	}
	if found {
		return ready(existing)
	}

	complete, err := s.gate.WeekComplete(ctx, season, game.SeasonTypeRegular, week)
	if err != nil {
		s.logger.ErrorContext(ctx, "weekly completion check", "error", err, "pool_id", poolID, "week", week)
		return failed[winner.WeeklyWinner](err)
	}
	if !complete {
		return pending[winner.WeeklyWinner]()
	}

	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		s.logger.ErrorContext(ctx, "read pool for weekly winner", "error", err, "pool_id", poolID)
		return failed[winner.WeeklyWinner](err)
	}
	if !found {
		return failed[winner.WeeklyWinner](fmt.Errorf("%w: pool %s", ErrNotFound, poolID))
	}

	scores, err := s.scoreService.AggregateWeek(ctx, poolID, season, game.SeasonTypeRegular, week)
	if err != nil {
		s.logger.ErrorContext(ctx, "aggregate week for winner", "error", err, "pool_id", poolID, "week", week)
		return failed[winner.WeeklyWinner](err)
	}

	top := TopScorers(scores)
	if len(top) == 0 {
		return noWinner[winner.WeeklyWinner]()
	}

	record := winner.WeeklyWinner{
		PoolID:            poolID,
		Season:            season,
		Week:              week,
		TotalParticipants: len(scores),
		CalculatedAt:      s.now().UTC(),
	}

	if len(top) == 1 || !p.BreaksWeeklyTies(winner.IsPeriodEndWeek(week)) {
		// Co-winners on ordinary weeks of a normal pool: the first of the
		// tied set is recorded as representative, tie_breaker_used stays
		// false so the UI can present the whole set.
		record.ParticipantID = top[0].ParticipantID
		record.ParticipantName = top[0].ParticipantName
		record.Points = top[0].Points
		record.CorrectPicks = top[0].CorrectPicks
	} else {
		candidates := make([]TieCandidate, 0, len(top))
		for _, t := range top {
			candidates = append(candidates, TieCandidate{ParticipantScore: t})
		}
		outcome, err := s.resolver.ResolveWeekly(ctx, p, candidates, season, game.SeasonTypeRegular, week)
		if err != nil {
			s.logger.ErrorContext(ctx, "resolve weekly tie", "error", err, "pool_id", poolID, "week", week)
			return failed[winner.WeeklyWinner](err)
		}
		head := outcome.Ordered[0]
		record.ParticipantID = head.ParticipantID
		record.ParticipantName = head.ParticipantName
		record.Points = head.Points
		record.CorrectPicks = head.CorrectPicks
		record.TieBreak = winner.TieBreak{
			Used:         outcome.Used,
			Question:     p.TieBreakerQuestion,
			TargetAnswer: outcome.TargetAnswer,
			WinnerAnswer: outcome.WinnerAnswer,
			Difference:   outcome.Difference,
		}
	}

	if err := s.weeklyWinnerRepo.Upsert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "upsert weekly winner", "error", err, "pool_id", poolID, "week", week)
		return failed[winner.WeeklyWinner](err)
	}
	return ready(record)
}

// GetOrCalculatePeriodWinner returns the stored period winner or computes it
// once every week of the quarter has a finalized weekly winner.
func (s *WinnerService) GetOrCalculatePeriodWinner(ctx context.Context, poolID string, season int, periodName string) Result[winner.PeriodWinner] {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.GetOrCalculatePeriodWinner")
	defer span.End()

	startWeek, endWeek, ok := winner.PeriodRange(periodName)
	if !ok {
		return failed[winner.PeriodWinner](fmt.Errorf("%w: period %q", ErrInvalidInput, periodName))
	}

	existing, found, err := s.periodWinnerRepo.Get(ctx, poolID, season, periodName)
	if err != nil {
		s.logger.ErrorContext(ctx, "read period winner", "error", err, "pool_id", poolID, "period", periodName)
		return failed[winner.PeriodWinner](err)
	}
	if found {
		return ready(existing)
	}

	complete, _, err := s.gate.PeriodComplete(ctx, poolID, season, startWeek, endWeek)
	if err != nil {
		s.logger.ErrorContext(ctx, "period completion check", "error", err, "pool_id", poolID, "period", periodName)
		return failed[winner.PeriodWinner](err)
	}
	if !complete {
		return pending[winner.PeriodWinner]()
	}

	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		s.logger.ErrorContext(ctx, "read pool for period winner", "error", err, "pool_id", poolID)
		return failed[winner.PeriodWinner](err)
	}
	if !found {
		return failed[winner.PeriodWinner](fmt.Errorf("%w: pool %s", ErrNotFound, poolID))
	}

	stats, outcome, res := s.rangeWinner(ctx, p, season, startWeek, endWeek, periodName == winner.PeriodQ4)
	if res.State != ResultReady {
		return Result[winner.PeriodWinner]{State: res.State, Err: res.Err}
	}

	record := winner.PeriodWinner{
		PoolID:            poolID,
		Season:            season,
		PeriodName:        periodName,
		ParticipantID:     res.Value.ParticipantID,
		ParticipantName:   res.Value.ParticipantName,
		TotalPoints:       res.Value.SeasonPoints,
		TotalCorrectPicks: res.Value.SeasonCorrectPicks,
		WeeksWon:          res.Value.WeeksWon,
		TieBreak: winner.TieBreak{
			Used:         outcome.Used,
			Question:     p.TieBreakerQuestion,
			TargetAnswer: outcome.TargetAnswer,
			WinnerAnswer: outcome.WinnerAnswer,
			Difference:   outcome.Difference,
		},
		TotalParticipants: stats,
		CalculatedAt:      s.now().UTC(),
	}

	if err := s.periodWinnerRepo.Upsert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "upsert period winner", "error", err, "pool_id", poolID, "period", periodName)
		return failed[winner.PeriodWinner](err)
	}
	return ready(record)
}

// GetOrCalculateSeasonWinner returns the stored season winner or computes it
// once the season is complete and enough weeks have finalized.
func (s *WinnerService) GetOrCalculateSeasonWinner(ctx context.Context, poolID string, season int) Result[winner.SeasonWinner] {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.GetOrCalculateSeasonWinner")
	defer span.End()

	existing, found, err := s.seasonWinnerRepo.Get(ctx, poolID, season)
	if err != nil {
		s.logger.ErrorContext(ctx, "read season winner", "error", err, "pool_id", poolID)
		return failed[winner.SeasonWinner](err)
	}
	if found {
		return ready(existing)
	}

	completedWeeks, err := s.gate.CompletedWeeksInSeason(ctx, poolID, season)
	if err != nil {
		s.logger.ErrorContext(ctx, "season completion check", "error", err, "pool_id", poolID)
		return failed[winner.SeasonWinner](err)
	}
	if completedWeeks < s.seasonMinWeeks {
		return pending[winner.SeasonWinner]()
	}

	complete, _, err := s.gate.PeriodComplete(ctx, poolID, season, 1, game.MaxWeeksRegularSeason)
	if err != nil {
		s.logger.ErrorContext(ctx, "season period check", "error", err, "pool_id", poolID)
		return failed[winner.SeasonWinner](err)
	}
	if !complete {
		return pending[winner.SeasonWinner]()
	}

	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		s.logger.ErrorContext(ctx, "read pool for season winner", "error", err, "pool_id", poolID)
		return failed[winner.SeasonWinner](err)
	}
	if !found {
		return failed[winner.SeasonWinner](fmt.Errorf("%w: pool %s", ErrNotFound, poolID))
	}

	stats, outcome, res := s.rangeWinner(ctx, p, season, 1, game.MaxWeeksRegularSeason, true)
	if res.State != ResultReady {
		return Result[winner.SeasonWinner]{State: res.State, Err: res.Err}
	}

	record := winner.SeasonWinner{
		PoolID:            poolID,
		Season:            season,
		ParticipantID:     res.Value.ParticipantID,
		ParticipantName:   res.Value.ParticipantName,
		TotalPoints:       res.Value.SeasonPoints,
		TotalCorrectPicks: res.Value.SeasonCorrectPicks,
		WeeksWon:          res.Value.WeeksWon,
		TieBreak: winner.TieBreak{
			Used:         outcome.Used,
			Question:     p.TieBreakerQuestion,
			TargetAnswer: outcome.TargetAnswer,
			WinnerAnswer: outcome.WinnerAnswer,
			Difference:   outcome.Difference,
		},
		TotalParticipants: stats,
		CalculatedAt:      s.now().UTC(),
	}

	if err := s.seasonWinnerRepo.Upsert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "upsert season winner", "error", err, "pool_id", poolID)
		return failed[winner.SeasonWinner](err)
	}
	return ready(record)
}

// rangeWinner aggregates a week range, finds the tied top scorers, and
// resolves them through the period cascade. Returns total participants, the
// tie-break outcome, and the winning candidate.
func (s *WinnerService) rangeWinner(ctx context.Context, p pool.Pool, season, startWeek, endWeek int, finalQuarter bool) (int, TieBreakOutcome, Result[TieCandidate]) {
	scores, err := s.scoreService.AggregateRange(ctx, p.ID, season, game.SeasonTypeRegular, startWeek, endWeek)
	if err != nil {
		s.logger.ErrorContext(ctx, "aggregate range for winner", "error", err, "pool_id", p.ID)
		return 0, TieBreakOutcome{}, failed[TieCandidate](err)
	}
	if len(scores) == 0 {
		return 0, TieBreakOutcome{}, noWinner[TieCandidate]()
	}

	maxPoints := scores[0].TotalPoints
	for _, rs := range scores[1:] {
		if rs.TotalPoints > maxPoints {
			maxPoints = rs.TotalPoints
		}
	}
	if maxPoints <= 0 {
		return 0, TieBreakOutcome{}, noWinner[TieCandidate]()
	}

	weeksWon, err := s.scoreService.WeeksWon(ctx, p.ID, season, startWeek, endWeek)
	if err != nil {
		s.logger.ErrorContext(ctx, "weeks won for winner", "error", err, "pool_id", p.ID)
		return 0, TieBreakOutcome{}, failed[TieCandidate](err)
	}

	candidates := make([]TieCandidate, 0, 1)
	for _, rs := range scores {
		if rs.TotalPoints != maxPoints {
			continue
		}
		candidates = append(candidates, TieCandidate{
			ParticipantScore: ParticipantScore{
				ParticipantID:   rs.ParticipantID,
				ParticipantName: rs.ParticipantName,
				Points:          rs.TotalPoints,
				CorrectPicks:    rs.TotalCorrectPicks,
				TotalPicks:      rs.TotalPicks,
			},
			SeasonPoints:       rs.TotalPoints,
			SeasonCorrectPicks: rs.TotalCorrectPicks,
			SeasonTotalPicks:   rs.TotalPicks,
			WeeksWon:           weeksWon[rs.ParticipantID],
		})
	}

	outcome, err := s.resolver.ResolvePeriod(ctx, p, candidates, season, endWeek, finalQuarter)
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve range tie", "error", err, "pool_id", p.ID)
		return 0, TieBreakOutcome{}, failed[TieCandidate](err)
	}

	return len(scores), outcome, ready(outcome.Ordered[0])
}

// InvalidateWeeklyWinner deletes the cached record so the next read
// recomputes from source data.
func (s *WinnerService) InvalidateWeeklyWinner(ctx context.Context, poolID string, season, week int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.InvalidateWeeklyWinner")
	defer span.End()
	return s.weeklyWinnerRepo.Delete(ctx, poolID, season, week)
}

func (s *WinnerService) InvalidatePeriodWinner(ctx context.Context, poolID string, season int, periodName string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.InvalidatePeriodWinner")
	defer span.End()
	return s.periodWinnerRepo.Delete(ctx, poolID, season, periodName)
}

func (s *WinnerService) InvalidateSeasonWinner(ctx context.Context, poolID string, season int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WinnerService.InvalidateSeasonWinner")
	defer span.End()
	return s.seasonWinnerRepo.Delete(ctx, poolID, season)
}
