package httpapi

import (
	"net/http"
	"strings"
)

type dashboardDTO struct {
	Season          int    `json:"season"`
	CurrentWeek     int    `json:"current_week"`
	SelectedPoolID  string `json:"selected_pool_id"`
	PoolName        string `json:"pool_name"`
	LiveGameCount   int    `json:"live_game_count"`
	CompletedWeeks  []int  `json:"completed_weeks"`
	TotalPoints     int    `json:"total_points"`
	CorrectPicks    int    `json:"correct_picks"`
	Rank            int    `json:"rank"`
	ParticipantRank bool   `json:"participant_rank"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	poolID := strings.TrimSpace(r.URL.Query().Get("pool_id"))
	participantID := strings.TrimSpace(r.URL.Query().Get("participant_id"))
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dashboard, err := h.dashboardService.Get(ctx, poolID, participantID, season)
	if err != nil {
		h.logger.ErrorContext(ctx, "get dashboard failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	completed := dashboard.CompletedWeeks
	if completed == nil {
		completed = []int{}
	}

	writeSuccess(ctx, w, http.StatusOK, dashboardDTO{
		Season:          dashboard.Season,
		CurrentWeek:     dashboard.CurrentWeek,
		SelectedPoolID:  dashboard.SelectedPoolID,
		PoolName:        dashboard.PoolName,
		LiveGameCount:   dashboard.LiveGameCount,
		CompletedWeeks:  completed,
		TotalPoints:     dashboard.TotalPoints,
		CorrectPicks:    dashboard.CorrectPicks,
		Rank:            dashboard.Rank,
		ParticipantRank: dashboard.ParticipantRank,
	})
}
