package httpapi

import (
	"net/http"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
)

type gameDTO struct {
	ID         string  `json:"id"`
	Season     int     `json:"season"`
	SeasonType int     `json:"season_type"`
	Week       int     `json:"week"`
	HomeTeam   string  `json:"home_team"`
	AwayTeam   string  `json:"away_team"`
	HomeScore  *int    `json:"home_score"`
	AwayScore  *int    `json:"away_score"`
	Status     string  `json:"status"`
	Winner     *string `json:"winner"`
	Quarter    *int    `json:"quarter,omitempty"`
	Clock      string  `json:"clock,omitempty"`
	KickoffAt  string  `json:"kickoff_at,omitempty"`
}

type teamDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	LogoURL      string `json:"logo_url,omitempty"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	season, err := queryInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonType, err := queryIntDefault(r, "season_type", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := queryInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.gameService.ListWeek(ctx, season, seasonType, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.gameService.ListTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:         g.ID,
		Season:     g.Season,
		SeasonType: g.SeasonType,
		Week:       g.Week,
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		Status:     g.Status,
		Winner:     g.Winner,
		Quarter:    g.Quarter,
		Clock:      g.Clock,
		KickoffAt:  formatTime(g.KickoffAt),
	}
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:           t.ID,
		Name:         t.Name,
		Abbreviation: t.Abbreviation,
		LogoURL:      t.LogoURL,
	}
}
