package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pickemlabs/confidence-pool/internal/domain/jobscheduler"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type Handler struct {
	poolService      *usecase.PoolService
	gameService      *usecase.GameService
	pickService      *usecase.PickService
	winnerService    *usecase.WinnerService
	standingsService *usecase.StandingsService
	exportService    *usecase.ExportService
	dashboardService *usecase.DashboardService
	scoreService     *usecase.ScoreService
	recalcService    *usecase.RecalcService
	jobOrchestrator  *usecase.JobOrchestratorService
	jobDispatchRepo  jobscheduler.Repository
	logger           *slog.Logger
	validator        *validator.Validate
}

func NewHandler(
	poolService *usecase.PoolService,
	gameService *usecase.GameService,
	pickService *usecase.PickService,
	winnerService *usecase.WinnerService,
	standingsService *usecase.StandingsService,
	exportService *usecase.ExportService,
	dashboardService *usecase.DashboardService,
	scoreService *usecase.ScoreService,
	recalcService *usecase.RecalcService,
	jobOrchestrator *usecase.JobOrchestratorService,
	jobDispatchRepo jobscheduler.Repository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		poolService:      poolService,
		gameService:      gameService,
		pickService:      pickService,
		winnerService:    winnerService,
		standingsService: standingsService,
		exportService:    exportService,
		dashboardService: dashboardService,
		scoreService:     scoreService,
		recalcService:    recalcService,
		jobOrchestrator:  jobOrchestrator,
		jobDispatchRepo:  jobDispatchRepo,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// queryInt parses a required integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: query parameter %q is required", usecase.ErrInvalidInput, name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %q must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

// queryIntDefault parses an optional integer query parameter, returning def
// when the parameter is absent or blank.
func queryIntDefault(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %q must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
