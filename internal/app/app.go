package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sampaiofree/temporadaonline-sub001/internal/config"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/account/passaporte"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/postgres"
	"github.com/sampaiofree/temporadaonline-sub001/internal/interfaces/httpapi"
	"github.com/sampaiofree/temporadaonline-sub001/internal/jobs"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/cache"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/resilience"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"

	_ "github.com/lib/pq"
)

// App bundles the HTTP server, the background sweeper, and the database
// handle they share, so main can start and stop them as one unit.
type App struct {
	Server  *http.Server
	Sweeper *jobs.Sweeper

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.SeedOnBoot {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	store := postgres.NewStore(db)
	leagueRepo := postgres.NewLeagueRepository(store)
	clubRepo := postgres.NewClubRepository(store)
	catalogRepo := postgres.NewCatalogRepository(store)
	walletRepo := postgres.NewWalletRepository(store)
	rosterRepo := postgres.NewRosterRepository(store)
	transferLog := postgres.NewTransferLog(store)
	itemRepo := postgres.NewAuctionItemRepository(store)
	bidRepo := postgres.NewAuctionBidRepository(store)
	proposalRepo := postgres.NewProposalRepository(store)
	fixtureRepo := postgres.NewFixtureRepository(store)
	eventLog := postgres.NewFixtureEventLog(store)
	availabilityRepo := postgres.NewAvailabilityRepository(store)
	settlementRepo := postgres.NewSettlementRepository(store)

	var catalogCache *cache.Store
	if cfg.CacheEnabled {
		catalogCache = cache.NewStore(cfg.CacheTTL)
	}

	idGen := idgen.NewRandomGenerator()

	transferSvc := usecase.NewTransferService(leagueRepo, clubRepo, catalogRepo, walletRepo, rosterRepo, transferLog, store, idGen, logger)
	auctionSvc := usecase.NewAuctionService(leagueRepo, clubRepo, catalogRepo, walletRepo, rosterRepo, transferLog, itemRepo, bidRepo, store, market.DefaultConfig(), catalogCache, idGen, logger)
	proposalSvc := usecase.NewProposalService(proposalRepo, transferSvc, store, idGen, logger)
	schedulerSvc := usecase.NewSchedulerService(leagueRepo, clubRepo, fixtureRepo, eventLog, availabilityRepo, store, idGen, logger)
	payrollSvc := usecase.NewPayrollService(leagueRepo, fixtureRepo, rosterRepo, walletRepo, settlementRepo, store, idGen, logger)
	fixtureSvc := usecase.NewFixtureService(leagueRepo, clubRepo, fixtureRepo, eventLog, payrollSvc, store, idGen, logger)
	walletSvc := usecase.NewWalletService(leagueRepo, clubRepo, walletRepo, rosterRepo, transferLog, store, logger)
	availabilitySvc := usecase.NewAvailabilityService(availabilityRepo, idGen, logger)

	verifier := passaporte.NewClient(
		&http.Client{Timeout: cfg.PassaporteTimeout},
		passaporte.Config{
			BaseURL:        cfg.PassaporteBaseURL,
			IntrospectPath: cfg.PassaporteIntrospectPath,
			CacheTTL:       cfg.CacheTTL,
			Breaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PassaporteCircuitEnabled,
				FailureThreshold: cfg.PassaporteCircuitFailureCount,
				OpenTimeout:      cfg.PassaporteCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.PassaporteCircuitHalfOpenReq,
			},
		},
		logger,
	)

	handler := httpapi.NewHandler(
		transferSvc,
		auctionSvc,
		proposalSvc,
		schedulerSvc,
		fixtureSvc,
		payrollSvc,
		walletSvc,
		availabilitySvc,
		leagueRepo,
		clubRepo,
		catalogRepo,
		transferLog,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	sweeper := jobs.NewSweeper(leagueRepo, auctionSvc, fixtureSvc, cfg.JobAuctionSweepInterval, cfg.JobScoreSweepInterval, logger)

	return &App{
		Server:  server,
		Sweeper: sweeper,
		db:      db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
