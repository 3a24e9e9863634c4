package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pickemlabs/confidence-pool/external/espn"
	"github.com/pickemlabs/confidence-pool/external/jobqueue"
	"github.com/pickemlabs/confidence-pool/internal/config"
	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/jobscheduler"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/rawdata"
	"github.com/pickemlabs/confidence-pool/internal/domain/score"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	cacherepo "github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/cache"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/postgres"
	"github.com/pickemlabs/confidence-pool/internal/interfaces/httpapi"
	"github.com/pickemlabs/confidence-pool/internal/platform/cache"
	idgen "github.com/pickemlabs/confidence-pool/internal/platform/id"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
	"github.com/pickemlabs/confidence-pool/internal/platform/resilience"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type repositories struct {
	pools         pool.Repository
	participants  participant.Repository
	games         game.Repository
	teams         team.Repository
	picks         pick.Repository
	tiebreaks     tiebreak.Repository
	scores        score.Repository
	rawData       rawdata.Repository
	weeklyWinners winner.WeeklyRepository
	periodWinners winner.PeriodRepository
	seasonWinners winner.SeasonRepository
	jobDispatches jobscheduler.Repository
}

// NewHTTPServer assembles the full service graph and returns the API server
// ready to listen. Repositories come from Postgres when DB_URL is set, or
// from seeded in-memory stores otherwise.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	appLogger := logging.Default()

	repos, err := buildRepositories(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
		repos.pools = cacherepo.NewPoolRepository(repos.pools, cacheStore)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, cacheStore)
		repos.games = cacherepo.NewGameRepository(repos.games, cacheStore)
		repos.participants = cacherepo.NewParticipantRepository(repos.participants, cacheStore)
	}

	scoreSvc := usecase.NewScoreService(repos.games, repos.picks, repos.participants, repos.scores, repos.weeklyWinners)
	gate := usecase.NewCompletionGate(repos.games, repos.weeklyWinners)
	resolver := usecase.NewTieResolver(scoreSvc, repos.tiebreaks, usecase.ShuffleFallback{})

	winnerSvc := usecase.NewWinnerService(
		repos.pools,
		repos.weeklyWinners,
		repos.periodWinners,
		repos.seasonWinners,
		scoreSvc,
		gate,
		resolver,
		appLogger,
	)
	winnerSvc.SetSeasonMinCompletedWeeks(cfg.SeasonMinCompletedWeeks)

	poolSvc := usecase.NewPoolService(repos.pools, repos.participants, idgen.NewRandomGenerator())
	gameSvc := usecase.NewGameService(repos.games, repos.teams)
	pickSvc := usecase.NewPickService(repos.pools, repos.participants, repos.games, repos.picks, repos.tiebreaks)
	standingsSvc := usecase.NewStandingsService(scoreSvc, gate, repos.periodWinners, cacheStore)
	exportSvc := usecase.NewExportService(repos.games, repos.picks, repos.participants, scoreSvc)
	dashboardSvc := usecase.NewDashboardService(repos.pools, repos.games, scoreSvc, gate)

	espnClient := espn.NewClient(espn.ClientConfig{
		BaseURL:    cfg.ESPNBaseURL,
		Timeout:    cfg.ESPNTimeout,
		MaxRetries: cfg.ESPNMaxRetries,
		Logger:     appLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	syncSvc := usecase.NewSyncService(espnClient, repos.games, repos.teams, repos.rawData, appLogger)
	recalcSvc := usecase.NewRecalcService(repos.pools, scoreSvc, winnerSvc, appLogger)

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		logger.Info("qstash disabled, job follow-ups run inline only")
	}

	orchestrator := usecase.NewJobOrchestratorService(
		repos.games,
		syncSvc,
		recalcSvc,
		queue,
		repos.jobDispatches,
		usecase.JobOrchestratorConfig{
			ScheduleInterval: cfg.JobScheduleInterval,
			LiveInterval:     cfg.JobLiveInterval,
			PreKickoffLead:   cfg.JobPreKickoffLead,
		},
		appLogger,
	)

	handler := httpapi.NewHandler(
		poolSvc,
		gameSvc,
		pickSvc,
		winnerSvc,
		standingsSvc,
		exportSvc,
		dashboardSvc,
		scoreSvc,
		recalcSvc,
		orchestrator,
		repos.jobDispatches,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Warn("DB_URL is empty, using seeded in-memory repositories")
		return memoryRepositories(), nil
	}

	db, err := connectDB(cfg)
	if err != nil {
		return repositories{}, err
	}

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
	}

	return repositories{
		pools:         postgres.NewPoolRepository(db),
		participants:  postgres.NewParticipantRepository(db),
		games:         postgres.NewGameRepository(db),
		teams:         postgres.NewTeamRepository(db),
		picks:         postgres.NewPickRepository(db),
		tiebreaks:     postgres.NewTieBreakRepository(db),
		scores:        postgres.NewScoreRepository(db),
		rawData:       postgres.NewRawDataRepository(db),
		weeklyWinners: postgres.NewWeeklyWinnerRepository(db),
		periodWinners: postgres.NewPeriodWinnerRepository(db),
		seasonWinners: postgres.NewSeasonWinnerRepository(db),
		jobDispatches: postgres.NewJobDispatchRepository(db),
	}, nil
}

// memoryRepositories backs the server with seeded in-memory stores for local
// development. Job dispatches are not recorded in this mode.
func memoryRepositories() repositories {
	return repositories{
		pools:         memory.NewPoolRepository(memory.SeedPools()),
		participants:  memory.NewParticipantRepository(memory.SeedParticipants()),
		games:         memory.NewGameRepository(memory.SeedGames()),
		teams:         memory.NewTeamRepository(memory.SeedTeams()),
		picks:         memory.NewPickRepository(nil),
		tiebreaks:     memory.NewTieBreakRepository(nil),
		scores:        memory.NewScoreRepository(),
		rawData:       memory.NewRawDataRepository(),
		weeklyWinners: memory.NewWeeklyWinnerRepository(),
		periodWinners: memory.NewPeriodWinnerRepository(),
		seasonWinners: memory.NewSeasonWinnerRepository(),
	}
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
