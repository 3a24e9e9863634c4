package httpapi

import (
	"net/http"

	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type quarterStandingDTO struct {
	ParticipantID     string `json:"participant_id"`
	ParticipantName   string `json:"participant_name"`
	TotalPoints       int    `json:"total_points"`
	TotalCorrectPicks int    `json:"total_correct_picks"`
	CurrentWeekPoints int    `json:"current_week_points"`
	Rank              int    `json:"rank"`
}

type quarterStandingsDTO struct {
	PoolID         string               `json:"pool_id"`
	Season         int                  `json:"season"`
	PeriodName     string               `json:"period_name"`
	EndWeek        int                  `json:"end_week"`
	IsComplete     bool                 `json:"is_complete"`
	CompletedWeeks []int                `json:"completed_weeks"`
	Standings      []quarterStandingDTO `json:"standings"`
}

type participantScoreDTO struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	Points          int    `json:"points"`
	CorrectPicks    int    `json:"correct_picks"`
	TotalPicks      int    `json:"total_picks"`
	Rank            int    `json:"rank"`
}

type periodAvailabilityDTO struct {
	PeriodName string `json:"period_name"`
	StartWeek  int    `json:"start_week"`
	EndWeek    int    `json:"end_week"`
	Reached    bool   `json:"reached"`
	Complete   bool   `json:"complete"`
	Calculated bool   `json:"calculated"`
}

func (h *Handler) GetQuarterStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetQuarterStandings")
	defer span.End()

	poolID := r.PathValue("poolID")
	endWeek, err := queryInt(r, "end_week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	standings, err := h.standingsService.CurrentQuarterStandings(ctx, poolID, endWeek, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get quarter standings failed", "pool_id", poolID, "end_week", endWeek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, quarterStandingsToDTO(standings))
}

func (h *Handler) GetWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyLeaderboard")
	defer span.End()

	poolID := r.PathValue("poolID")
	week, err := queryInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	scores, err := h.standingsService.WeeklyLeaderboard(ctx, poolID, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get weekly leaderboard failed", "pool_id", poolID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantScoreDTO, 0, len(scores))
	for _, s := range scores {
		items = append(items, participantScoreToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPeriods")
	defer span.End()

	poolID := r.PathValue("poolID")
	currentWeek, err := queryIntDefault(r, "current_week", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	periods, err := h.standingsService.ListPeriodAvailability(ctx, poolID, season, currentWeek)
	if err != nil {
		h.logger.WarnContext(ctx, "list periods failed", "pool_id", poolID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]periodAvailabilityDTO, 0, len(periods))
	for _, p := range periods {
		items = append(items, periodAvailabilityDTO{
			PeriodName: p.PeriodName,
			StartWeek:  p.StartWeek,
			EndWeek:    p.EndWeek,
			Reached:    p.Reached,
			Complete:   p.Complete,
			Calculated: p.Calculated,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func quarterStandingsToDTO(v usecase.QuarterStandings) quarterStandingsDTO {
	standings := make([]quarterStandingDTO, 0, len(v.Standings))
	for _, s := range v.Standings {
		standings = append(standings, quarterStandingDTO{
			ParticipantID:     s.ParticipantID,
			ParticipantName:   s.ParticipantName,
			TotalPoints:       s.TotalPoints,
			TotalCorrectPicks: s.TotalCorrectPicks,
			CurrentWeekPoints: s.CurrentWeekPoints,
			Rank:              s.Rank,
		})
	}
	completed := v.CompletedWeeks
	if completed == nil {
		completed = []int{}
	}
	return quarterStandingsDTO{
		PoolID:         v.PoolID,
		Season:         v.Season,
		PeriodName:     v.PeriodName,
		EndWeek:        v.EndWeek,
		IsComplete:     v.IsComplete,
		CompletedWeeks: completed,
		Standings:      standings,
	}
}

func participantScoreToDTO(v usecase.ParticipantScore) participantScoreDTO {
	return participantScoreDTO{
		ParticipantID:   v.ParticipantID,
		ParticipantName: v.ParticipantName,
		Points:          v.Points,
		CorrectPicks:    v.CorrectPicks,
		TotalPicks:      v.TotalPicks,
		Rank:            v.Rank,
	}
}
