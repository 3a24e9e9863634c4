package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/jobscheduler"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	ScheduleInterval time.Duration
	LiveInterval     time.Duration
	PreKickoffLead   time.Duration
}

type JobSyncInput struct {
	Season     int
	SeasonType int
	Week       int
	Force      bool
}

type JobSyncResult struct {
	Mode             string   `json:"mode"`
	Season           int      `json:"season"`
	Week             int      `json:"week"`
	LiveGameCount    int      `json:"live_game_count"`
	QueuedCount      int      `json:"queued_count"`
	QueuedOperations []string `json:"queued_operations"`
}

// JobOrchestratorService drives the scoreboard sync loop. Each run syncs
// one week, inspects the game states, and enqueues the follow-up jobs:
// a tighter sync cadence while games are live, a recalculation once the
// week finishes, and a slow poll otherwise.
type JobOrchestratorService struct {
	gameRepo     game.Repository
	syncSvc      *SyncService
	recalcSvc    *RecalcService
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	gameRepo game.Repository,
	syncSvc *SyncService,
	recalcSvc *RecalcService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = 15 * time.Minute
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = 2 * time.Minute
	}
	if cfg.PreKickoffLead <= 0 {
		cfg.PreKickoffLead = 15 * time.Minute
	}

	return &JobOrchestratorService{
		gameRepo:     gameRepo,
		syncSvc:      syncSvc,
		recalcSvc:    recalcSvc,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *JobOrchestratorService) RunScoreboardSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	return s.run(ctx, "scoreboard", input, true)
}

// RunScoreboardSyncDirect syncs once without scheduling follow-ups. Used
// by operators to refresh a week on demand.
func (s *JobOrchestratorService) RunScoreboardSyncDirect(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	return s.run(ctx, "scoreboard-direct", input, false)
}

// Bootstrap enqueues an initial scoreboard sync for every week in the
// given range so a fresh deployment backfills the season.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context, season, seasonType, startWeek, endWeek int) (JobSyncResult, error) {
	if err := validateSeasonWeekRange(season, startWeek, endWeek); err != nil {
		return JobSyncResult{}, err
	}

	now := s.now().UTC()
	result := JobSyncResult{
		Mode:             "bootstrap",
		Season:           season,
		QueuedOperations: make([]string, 0, endWeek-startWeek+1),
	}

	for week := startWeek; week <= endWeek; week++ {
		if err := s.enqueueJob(ctx, jobscheduler.JobSyncScoreboard, season, seasonType, week, 0, now); err != nil {
			return JobSyncResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobSyncScoreboard+":w"+strconv.Itoa(week))
	}

	return result, nil
}

func (s *JobOrchestratorService) run(ctx context.Context, mode string, input JobSyncInput, enqueueNext bool) (JobSyncResult, error) {
	if err := validateSeasonWeekRange(input.Season, input.Week, input.Week); err != nil {
		return JobSyncResult{}, err
	}
	seasonType := input.SeasonType
	if seasonType == 0 {
		seasonType = game.SeasonTypeRegular
	}

	if s.syncSvc != nil {
		if err := s.syncSvc.SyncWeek(ctx, input.Season, seasonType, input.Week); err != nil {
			return JobSyncResult{}, fmt.Errorf("sync scoreboard season=%d week=%d: %w", input.Season, input.Week, err)
		}
	}

	now := s.now().UTC()
	result := JobSyncResult{
		Mode:             mode,
		Season:           input.Season,
		Week:             input.Week,
		QueuedOperations: make([]string, 0, 2),
	}

	games, err := s.gameRepo.ListByWeek(ctx, input.Season, seasonType, input.Week)
	if err != nil {
		return JobSyncResult{}, fmt.Errorf("list games season=%d week=%d: %w", input.Season, input.Week, err)
	}

	liveCount, allFinished, nearestUpcoming := analyzeGames(games, now)
	result.LiveGameCount = liveCount

	if allFinished && len(games) > 0 {
		if s.recalcSvc != nil {
			if _, err := s.recalcSvc.RecalculateWeek(ctx, input.Season, input.Week); err != nil {
				s.logger.WarnContext(ctx, "recalculate after week completion failed",
					"season", input.Season,
					"week", input.Week,
					"error", err,
				)
			}
		}
		return result, nil
	}

	if !enqueueNext {
		return result, nil
	}

	delay := s.nextSyncDelay(now, liveCount > 0, nearestUpcoming, input.Force)
	if err := s.enqueueJob(ctx, jobscheduler.JobSyncScoreboard, input.Season, seasonType, input.Week, delay, now); err != nil {
		return JobSyncResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobSyncScoreboard+":w"+strconv.Itoa(input.Week))

	return result, nil
}

func (s *JobOrchestratorService) enqueueJob(ctx context.Context, jobName string, season, seasonType, week int, delay time.Duration, now time.Time) error {
	path := "/internal/v1/jobs/" + jobName
	bucket := s.cfg.ScheduleInterval
	if jobName == jobscheduler.JobSyncScoreboard && delay < s.cfg.ScheduleInterval {
		bucket = s.cfg.LiveInterval
	}
	dedupID := dedupKey(jobName, season, week, now.Add(delay), bucket)
	payload := map[string]any{
		"season":      season,
		"season_type": seasonType,
		"week":        week,
		"dispatch_id": dedupID,
	}
	if err := s.queue.Enqueue(ctx, path, payload, delay, dedupID); err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dedupID,
			JobName:      jobName,
			JobPath:      path,
			Season:       season,
			Week:         week,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
			OccurredAt:   now.UTC(),
		})
		return fmt.Errorf("enqueue %s season=%d week=%d: %w", jobName, season, week, err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    jobName,
		JobPath:    path,
		Season:     season,
		Week:       week,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now.UTC(),
	})
	return nil
}

func dedupKey(jobName string, season, week int, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	jobName = sanitizeDedupSegment(jobName)
	return fmt.Sprintf("%s-%d-w%d-%s", jobName, season, week, slot)
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

func analyzeGames(games []game.Game, now time.Time) (liveCount int, allFinished bool, nearestUpcoming *time.Time) {
	allFinished = len(games) > 0
	for _, g := range games {
		if game.IsLiveStatus(g.Status) {
			liveCount++
		}
		if !game.IsFinishedStatus(g.Status) {
			allFinished = false
		}

		if g.KickoffAt.IsZero() || g.KickoffAt.Before(now) {
			continue
		}
		if game.IsFinishedStatus(g.Status) {
			continue
		}
		if nearestUpcoming == nil || g.KickoffAt.Before(*nearestUpcoming) {
			next := g.KickoffAt
			nearestUpcoming = &next
		}
	}
	return liveCount, allFinished, nearestUpcoming
}

func (s *JobOrchestratorService) nextSyncDelay(now time.Time, hasLive bool, nearestUpcoming *time.Time, force bool) time.Duration {
	minDelay := 30 * time.Second
	if force {
		return minDelay
	}
	if hasLive {
		return maxDuration(s.cfg.LiveInterval, minDelay)
	}

	if nearestUpcoming != nil {
		liveAt := nearestUpcoming.Add(-s.cfg.PreKickoffLead)
		delay := liveAt.Sub(now)
		if delay <= 0 {
			return maxDuration(s.cfg.LiveInterval, minDelay)
		}
		if delay > s.cfg.ScheduleInterval {
			return s.cfg.ScheduleInterval
		}
		return maxDuration(delay, minDelay)
	}

	// Nothing upcoming nearby, poll slowly until the schedule changes.
	return maxDuration(s.cfg.ScheduleInterval, time.Hour)
}

func validateSeasonWeekRange(season, startWeek, endWeek int) error {
	if season <= 0 {
		return fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if startWeek < 1 || endWeek > game.MaxWeeksRegularSeason || startWeek > endWeek {
		return fmt.Errorf("%w: week range %d-%d is out of bounds", ErrInvalidInput, startWeek, endWeek)
	}
	return nil
}

func maxDuration(left, right time.Duration) time.Duration {
	if left > right {
		return left
	}
	return right
}
