package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
)

const (
	defaultRecalcWorkers = 4

	recalcStatusSuccess = "success"
	recalcStatusSkipped = "skipped"
	recalcStatusFailed  = "failed"
)

// RecalcPoolResult reports one pool's forced recomputation.
type RecalcPoolResult struct {
	PoolID     string
	Status     string
	Message    string
	DurationMs int64
}

// RecalcResult summarizes a recalculation run across pools.
type RecalcResult struct {
	Season       int
	Week         int
	Pools        []RecalcPoolResult
	SuccessCount int
	SkippedCount int
	FailedCount  int
}

// RecalcService forces winner recomputation after result corrections. It
// invalidates cached winner rows, rematerializes scores, and recomputes
// through the same calculators the read path uses, fanning pools out over a
// worker pool.
type RecalcService struct {
	poolRepo      pool.Repository
	scoreService  *ScoreService
	winnerService *WinnerService
	logger        *logging.Logger
	workerCount   int
	now           func() time.Time
}

func NewRecalcService(
	poolRepo pool.Repository,
	scoreService *ScoreService,
	winnerService *WinnerService,
	logger *logging.Logger,
) *RecalcService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecalcService{
		poolRepo:      poolRepo,
		scoreService:  scoreService,
		winnerService: winnerService,
		logger:        logger,
		workerCount:   defaultRecalcWorkers,
		now:           time.Now,
	}
}

// RecalculateWeek reruns score materialization and the weekly winner for
// every pool in the season, then refreshes any period or season winner the
// week feeds into.
func (s *RecalcService) RecalculateWeek(ctx context.Context, season, week int) (RecalcResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecalcService.RecalculateWeek")
	defer span.End()

	if week < 1 || week > game.MaxWeeksRegularSeason {
		return RecalcResult{}, fmt.Errorf("%w: week %d", ErrInvalidInput, week)
	}

	pools, err := s.poolRepo.ListBySeason(ctx, season)
	if err != nil {
		return RecalcResult{}, fmt.Errorf("list pools for recalculation: %w", err)
	}

	result := RecalcResult{Season: season, Week: week}
	if len(pools) == 0 {
		return result, nil
	}

	results := make(chan RecalcPoolResult, len(pools))

	var successCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := ants.NewPool(s.workerCount)
	if err != nil {
		return RecalcResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, p := range pools {
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RecalcPoolResult{PoolID: p.ID}
			status, message := s.recalculatePoolWeek(ctx, p.ID, season, week)
			row.Status = status
			row.Message = message
			row.DurationMs = time.Since(start).Milliseconds()

			switch status {
			case recalcStatusSuccess:
				successCount.Add(1)
			case recalcStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return RecalcResult{}, fmt.Errorf("submit pool to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Pools = append(result.Pools, row)
	}
	sort.SliceStable(result.Pools, func(i, j int) bool {
		return result.Pools[i].PoolID < result.Pools[j].PoolID
	})

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func (s *RecalcService) recalculatePoolWeek(ctx context.Context, poolID string, season, week int) (string, string) {
	if err := s.winnerService.InvalidateWeeklyWinner(ctx, poolID, season, week); err != nil {
		return recalcStatusFailed, fmt.Sprintf("invalidate weekly winner: %v", err)
	}

	if err := s.scoreService.MaterializeWeek(ctx, poolID, season, game.SeasonTypeRegular, week); err != nil {
		return recalcStatusFailed, fmt.Sprintf("materialize scores: %v", err)
	}

	res := s.winnerService.GetOrCalculateWeeklyWinner(ctx, poolID, season, week)
	switch res.State {
	case ResultStorageError:
		return recalcStatusFailed, fmt.Sprintf("weekly winner: %v", res.Err)
	case ResultPending:
		return recalcStatusSkipped, "week incomplete"
	case ResultNoQualifyingWinner:
		return recalcStatusSkipped, "no qualifying winner"
	}

	// A corrected week invalidates any period or season winner derived
	// from it; the next read through the calculators rebuilds them.
	if periodName, ok := winner.PeriodForWeek(week); ok {
		if err := s.winnerService.InvalidatePeriodWinner(ctx, poolID, season, periodName); err != nil {
			s.logger.WarnContext(ctx, "invalidate period winner after recalc", "error", err, "pool_id", poolID, "period", periodName)
		}
	}
	if err := s.winnerService.InvalidateSeasonWinner(ctx, poolID, season); err != nil {
		s.logger.WarnContext(ctx, "invalidate season winner after recalc", "error", err, "pool_id", poolID)
	}

	return recalcStatusSuccess, ""
}
