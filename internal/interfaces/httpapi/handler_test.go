package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
	idgen "github.com/pickemlabs/confidence-pool/internal/platform/id"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

const testJobToken = "test-job-token"

// newTestRouter wires the public routes against in-memory repositories:
// a two-person pool, a finished week 5, and an open week 1 slate.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	target := 45.0
	pools := memory.NewPoolRepository([]pool.Pool{{
		ID:                 "pool-1",
		Name:               "Office Pool",
		Season:             2026,
		Type:               pool.TypeNormal,
		TieBreakMethod:     pool.TieBreakCustom,
		TieBreakerQuestion: "Total points in the Monday night game?",
		TieBreakerAnswer:   &target,
	}})
	participants := memory.NewParticipantRepository([]participant.Participant{
		{ID: "p-alice", PoolID: "pool-1", Name: "Alice", Active: true},
		{ID: "p-bob", PoolID: "pool-1", Name: "Bob", Active: true},
	})

	dal := "DAL"
	games := memory.NewGameRepository([]game.Game{
		{
			ID: "g-w5-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 5,
			HomeTeam: "DAL", AwayTeam: "NYG", Status: game.StatusFinal, Winner: &dal,
			KickoffAt: time.Now().Add(-7 * 24 * time.Hour),
		},
		{
			ID: "g-w1-1", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 1,
			HomeTeam: "KC", AwayTeam: "LV", Status: game.StatusScheduled,
			KickoffAt: time.Now().Add(24 * time.Hour),
		},
		{
			ID: "g-w1-2", Season: 2026, SeasonType: game.SeasonTypeRegular, Week: 1,
			HomeTeam: "SF", AwayTeam: "SEA", Status: game.StatusScheduled,
			KickoffAt: time.Now().Add(27 * time.Hour),
		},
	})
	picks := memory.NewPickRepository([]pick.Pick{
		{ParticipantID: "p-alice", PoolID: "pool-1", GameID: "g-w5-1", PredictedWinner: "DAL", ConfidencePoints: 1},
		{ParticipantID: "p-bob", PoolID: "pool-1", GameID: "g-w5-1", PredictedWinner: "NYG", ConfidencePoints: 1},
	})
	tiebreaks := memory.NewTieBreakRepository(nil)
	scoreRepo := memory.NewScoreRepository()
	weeklyRepo := memory.NewWeeklyWinnerRepository()
	periodRepo := memory.NewPeriodWinnerRepository()
	seasonRepo := memory.NewSeasonWinnerRepository()

	scoreSvc := usecase.NewScoreService(games, picks, participants, scoreRepo, weeklyRepo)
	gate := usecase.NewCompletionGate(games, weeklyRepo)
	resolver := usecase.NewTieResolver(scoreSvc, tiebreaks, usecase.ParticipantIDFallback{})
	winnerSvc := usecase.NewWinnerService(pools, weeklyRepo, periodRepo, seasonRepo, scoreSvc, gate, resolver, logging.NewNop())
	poolSvc := usecase.NewPoolService(pools, participants, idgen.NewRandomGenerator())
	pickSvc := usecase.NewPickService(pools, participants, games, picks, tiebreaks)
	standingsSvc := usecase.NewStandingsService(scoreSvc, gate, periodRepo, nil)
	exportSvc := usecase.NewExportService(games, picks, participants, scoreSvc)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(poolSvc, nil, pickSvc, winnerSvc, standingsSvc, exportSvc, nil, scoreSvc, nil, nil, nil, logger)
	return NewRouter(handler, logger, false, nil, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return rec, envelope
}

func TestGetWeeklyWinner_FinishedWeek(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/pools/pool-1/winners/weekly?week=5&season=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	if got, _ := data["status"].(string); got != "ready" {
		t.Fatalf("expected ready winner, got %v", data["status"])
	}
	winner, ok := data["winner"].(map[string]any)
	if !ok {
		t.Fatalf("expected winner payload, got %v", data)
	}
	if got, _ := winner["participant_id"].(string); got != "p-alice" {
		t.Fatalf("expected p-alice, got %v", winner["participant_id"])
	}
	if got, _ := winner["points"].(float64); got != 1 {
		t.Fatalf("expected 1 point, got %v", winner["points"])
	}
}

func TestGetWeeklyWinner_OpenWeekIsPending(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/pools/pool-1/winners/weekly?week=1&season=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "pending" {
		t.Fatalf("expected pending, got %v", data["status"])
	}
	if _, ok := data["winner"]; ok {
		t.Fatalf("pending response must not carry a winner")
	}
}

func TestGetPool_UnknownPoolIs404(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/pools/pool-404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if _, ok := envelope["error"].(map[string]any); !ok {
		t.Fatalf("expected error envelope, got %v", envelope)
	}
}

func TestSubmitPicks_StoresSlate(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"participant_id": "p-alice",
		"season": 2026,
		"week": 1,
		"picks": [
			{"game_id": "g-w1-1", "predicted_winner": "KC", "confidence_points": 2},
			{"game_id": "g-w1-2", "predicted_winner": "SF", "confidence_points": 1}
		]
	}`
	rec, envelope := doRequest(t, router, http.MethodPost, "/v1/pools/pool-1/picks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	items, ok := envelope["data"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected two stored picks, got %v", envelope["data"])
	}
}

func TestSubmitPicks_RejectsDuplicateConfidence(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"participant_id": "p-alice",
		"season": 2026,
		"week": 1,
		"picks": [
			{"game_id": "g-w1-1", "predicted_winner": "KC", "confidence_points": 2},
			{"game_id": "g-w1-2", "predicted_winner": "SF", "confidence_points": 2}
		]
	}`
	rec, _ := doRequest(t, router, http.MethodPost, "/v1/pools/pool-1/picks", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestInternalJobRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/jobs/sync-scoreboard", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestExportWeeklyPicksCSV(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/pools/pool-1/export/weekly.csv?week=5&season=2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Alice") {
		t.Fatalf("expected Alice in export:\n%s", rec.Body.String())
	}
}
