package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/pools", handler.ListPools)
	mux.HandleFunc("GET /v1/pools/{poolID}", handler.GetPool)
	mux.HandleFunc("GET /v1/pools/{poolID}/participants", handler.ListPoolParticipants)
	mux.HandleFunc("GET /v1/pools/{poolID}/winners/weekly", handler.GetWeeklyWinner)
	mux.HandleFunc("GET /v1/pools/{poolID}/winners/period", handler.GetPeriodWinner)
	mux.HandleFunc("GET /v1/pools/{poolID}/winners/season", handler.GetSeasonWinner)
	mux.HandleFunc("GET /v1/pools/{poolID}/standings/quarter", handler.GetQuarterStandings)
	mux.HandleFunc("GET /v1/pools/{poolID}/leaderboard", handler.GetWeeklyLeaderboard)
	mux.HandleFunc("GET /v1/pools/{poolID}/periods", handler.ListPeriods)
	mux.HandleFunc("GET /v1/pools/{poolID}/export/weekly.csv", handler.ExportWeeklyPicksCSV)
	mux.HandleFunc("GET /v1/pools/{poolID}/export/period.csv", handler.ExportPeriodCSV)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/dashboard/health", handler.GetDashboard)

	mux.HandleFunc("POST /v1/pools", handler.CreatePool)
	mux.HandleFunc("PUT /v1/pools/{poolID}/tie-breaker", handler.SetPoolTieBreaker)
	mux.HandleFunc("POST /v1/pools/{poolID}/participants", handler.JoinPool)
	mux.HandleFunc("POST /v1/pools/{poolID}/picks", handler.SubmitPicks)
	mux.HandleFunc("POST /v1/pools/{poolID}/picks/unlock", handler.UnlockPicks)
	mux.HandleFunc("POST /v1/pools/{poolID}/tie-break-answers", handler.SubmitTieBreakAnswer)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/v1/jobs/sync-scoreboard", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreboardSyncJob)))
	mux.Handle("POST /internal/v1/jobs/materialize-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMaterializeScoresJob)))
	mux.Handle("POST /internal/v1/jobs/recalculate-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateWeekJob)))
	mux.Handle("POST /internal/v1/jobs/dispatch", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDispatchJob)))
}
