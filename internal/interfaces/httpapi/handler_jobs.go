package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/pickemlabs/confidence-pool/internal/domain/jobscheduler"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type internalJobSyncRequest struct {
	Season     int    `json:"season"`
	SeasonType int    `json:"season_type"`
	Week       int    `json:"week"`
	Weeks      []int  `json:"weeks"`
	StartWeek  int    `json:"start_week"`
	EndWeek    int    `json:"end_week"`
	Force      bool   `json:"force"`
	DispatchID string `json:"dispatch_id"`
}

func (h *Handler) RunScoreboardSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreboardSyncJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	weeks := req.Weeks
	if len(weeks) == 0 && req.Week > 0 {
		weeks = []int{req.Week}
	}
	if len(weeks) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: at least one week is required", usecase.ErrInvalidInput))
		return
	}

	results := make([]usecase.JobSyncResult, 0, len(weeks))
	for _, week := range weeks {
		result, err := h.jobOrchestrator.RunScoreboardSyncDirect(ctx, usecase.JobSyncInput{
			Season:     req.Season,
			SeasonType: req.SeasonType,
			Week:       week,
			Force:      req.Force,
		})
		if err != nil {
			h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
				JobName:      jobscheduler.JobSyncScoreboard,
				JobPath:      "/internal/v1/jobs/sync-scoreboard",
				Season:       req.Season,
				Week:         week,
				Status:       jobscheduler.StatusFailed,
				Payload:      buildInternalJobPayload(req),
				ErrorMessage: err.Error(),
				OccurredAt:   time.Now().UTC(),
			})
			h.logger.WarnContext(ctx, "run scoreboard sync job failed", "season", req.Season, "week", week, "error", err)
			writeError(ctx, w, err)
			return
		}
		results = append(results, result)
	}

	h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
		JobName:    jobscheduler.JobSyncScoreboard,
		JobPath:    "/internal/v1/jobs/sync-scoreboard",
		Season:     req.Season,
		Week:       weeks[0],
		Status:     jobscheduler.StatusCompleted,
		Payload:    buildInternalJobPayload(req),
		OccurredAt: time.Now().UTC(),
	})

	writeSuccess(ctx, w, http.StatusOK, results)
}

func (h *Handler) RunMaterializeScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMaterializeScoresJob")
	defer span.End()

	if h.scoreService == nil || h.poolService == nil {
		writeError(ctx, w, fmt.Errorf("%w: score service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Season <= 0 || req.Week <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: season and week are required", usecase.ErrInvalidInput))
		return
	}

	pools, err := h.poolService.ListBySeason(ctx, req.Season)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	materialized := 0
	for _, p := range pools {
		if err := h.scoreService.MaterializeWeek(ctx, p.ID, req.Season, req.SeasonType, req.Week); err != nil {
			h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
				JobName:      jobscheduler.JobMaterializeScores,
				JobPath:      "/internal/v1/jobs/materialize-scores",
				Season:       req.Season,
				Week:         req.Week,
				Status:       jobscheduler.StatusFailed,
				Payload:      buildInternalJobPayload(req),
				ErrorMessage: err.Error(),
				OccurredAt:   time.Now().UTC(),
			})
			h.logger.WarnContext(ctx, "materialize scores job failed", "pool_id", p.ID, "season", req.Season, "week", req.Week, "error", err)
			writeError(ctx, w, err)
			return
		}
		materialized++
	}

	h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
		JobName:    jobscheduler.JobMaterializeScores,
		JobPath:    "/internal/v1/jobs/materialize-scores",
		Season:     req.Season,
		Week:       req.Week,
		Status:     jobscheduler.StatusCompleted,
		Payload:    buildInternalJobPayload(req),
		OccurredAt: time.Now().UTC(),
	})

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"season":             req.Season,
		"week":               req.Week,
		"materialized_pools": materialized,
	})
}

func (h *Handler) RunRecalculateWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateWeekJob")
	defer span.End()

	if h.recalcService == nil {
		writeError(ctx, w, fmt.Errorf("%w: recalc service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recalcService.RecalculateWeek(ctx, req.Season, req.Week)
	if err != nil {
		h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
			JobName:      jobscheduler.JobRecalculateWeek,
			JobPath:      "/internal/v1/jobs/recalculate-week",
			Season:       req.Season,
			Week:         req.Week,
			Status:       jobscheduler.StatusFailed,
			Payload:      buildInternalJobPayload(req),
			ErrorMessage: err.Error(),
			OccurredAt:   time.Now().UTC(),
		})
		h.logger.WarnContext(ctx, "recalculate week job failed", "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.recordInternalJobDispatch(ctx, req, jobscheduler.DispatchEvent{
		JobName:    jobscheduler.JobRecalculateWeek,
		JobPath:    "/internal/v1/jobs/recalculate-week",
		Season:     req.Season,
		Week:       req.Week,
		Status:     jobscheduler.StatusCompleted,
		Payload:    buildInternalJobPayload(req),
		OccurredAt: time.Now().UTC(),
	})

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunDispatchJob is the orchestrator tick. With a week range it bootstraps
// the range; otherwise it syncs one week and schedules its follow-up.
func (h *Handler) RunDispatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDispatchJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalJobSyncRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var result usecase.JobSyncResult
	if req.StartWeek > 0 && req.EndWeek > 0 {
		result, err = h.jobOrchestrator.Bootstrap(ctx, req.Season, req.SeasonType, req.StartWeek, req.EndWeek)
	} else {
		result, err = h.jobOrchestrator.RunScoreboardSync(ctx, usecase.JobSyncInput{
			Season:     req.Season,
			SeasonType: req.SeasonType,
			Week:       req.Week,
			Force:      req.Force,
		})
	}
	if err != nil {
		h.logger.WarnContext(ctx, "dispatch job failed", "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeInternalJobSyncRequest(r *http.Request) (internalJobSyncRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req internalJobSyncRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return internalJobSyncRequest{}, nil
		}
		return internalJobSyncRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func (h *Handler) recordInternalJobDispatch(ctx context.Context, req internalJobSyncRequest, event jobscheduler.DispatchEvent) {
	if h.jobDispatchRepo == nil {
		return
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID(event.JobName, event.Season, event.Week, event.OccurredAt)
	}
	event.DispatchID = dispatchID

	traceID, spanID := httpTraceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID

	if err := h.jobDispatchRepo.UpsertEvent(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "record internal job dispatch failed",
			"dispatch_id", event.DispatchID,
			"job_name", event.JobName,
			"status", event.Status,
			"error", err,
		)
	}
}

func buildInternalJobPayload(req internalJobSyncRequest) map[string]any {
	payload := map[string]any{
		"season": req.Season,
		"week":   req.Week,
		"force":  req.Force,
	}
	if req.SeasonType != 0 {
		payload["season_type"] = req.SeasonType
	}
	if len(req.Weeks) > 0 {
		payload["weeks"] = req.Weeks
	}
	if strings.TrimSpace(req.DispatchID) != "" {
		payload["dispatch_id"] = req.DispatchID
	}
	return payload
}

func buildManualDispatchID(jobName string, season, week int, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return fmt.Sprintf("manual-%s-%d-w%d-%s", jobName, season, week, ts)
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}

func httpTraceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
