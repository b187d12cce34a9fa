package app

import (
	"fmt"
	"net/http"

	"github.com/rabsht/fpl-h2h/external/fpl"
	"github.com/rabsht/fpl-h2h/internal/config"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	"github.com/rabsht/fpl-h2h/internal/infrastructure/repository/memory"
	"github.com/rabsht/fpl-h2h/internal/infrastructure/repository/postgres"
	"github.com/rabsht/fpl-h2h/internal/interfaces/httpapi"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
	"github.com/rabsht/fpl-h2h/internal/platform/resilience"
	"github.com/rabsht/fpl-h2h/internal/usecase"
)

// NewHTTPServer wires the full service: the upstream client, the cached
// feed layer, the league services and the HTTP surface. The returned
// cleanup closes whatever the wiring opened and is safe to call once.
func NewHTTPServer(cfg config.Config, defs league.Definitions, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		standings snapshot.StandingRepository
		results   snapshot.FixtureResultRepository
		tables    snapshot.TeamTableRepository
		cleanup   = func() {}
	)

	if cfg.DBURL != "" {
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		standings = postgres.NewStandingRepository(db)
		results = postgres.NewFixtureResultRepository(db)
		tables = postgres.NewTeamTableRepository(db)
		cleanup = func() { _ = db.Close() }
	} else {
		logger.Warn("DB_URL empty, snapshots held in memory and lost on restart")
		standings = memory.NewStandingRepository()
		results = memory.NewFixtureResultRepository()
		tables = memory.NewTeamTableRepository(memory.SeedTeamTables(defs))
	}

	client := NewFPLClient(cfg, logger)

	feed := usecase.NewFeedService(client, usecase.FeedConfig{
		CoreTTL:        cfg.CacheCoreTTL,
		LeagueTTL:      cfg.CacheLeagueTTL,
		StaleFor:       cfg.CacheStaleFor,
		PostponedClubs: cfg.PostponedClubs,
	}, logger)

	dashboardService := usecase.NewDashboardService(feed, standings, results, defs.Individual, scoring.DefaultRules(), logger)
	teamLeagueService := usecase.NewTeamLeagueService(feed, tables, defs.TeamLeagues, logger)
	classicService := usecase.NewClassicService(feed, defs.Classics, logger)
	statsService := usecase.NewStatsService(feed, defs.Individual, logger)
	snapshotService := usecase.NewSnapshotService(dashboardService, feed, logger)

	handler := httpapi.NewHandler(
		dashboardService,
		teamLeagueService,
		classicService,
		statsService,
		snapshotService,
		client,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

// NewFPLClient builds the upstream client from the loaded configuration.
func NewFPLClient(cfg config.Config, logger *logging.Logger) *fpl.Client {
	return fpl.NewClient(fpl.ClientConfig{
		BaseURL:    cfg.FPLBaseURL,
		SessionID:  cfg.FPLSessionID,
		CSRFToken:  cfg.FPLCSRFToken,
		Timeout:    cfg.FPLTimeout,
		MaxRetries: cfg.FPLMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})
}
