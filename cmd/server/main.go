package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	grpcadapter "github.com/simaogato/fundbalance-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/fundbalance-backend/internal/adapter/http"
	"github.com/simaogato/fundbalance-backend/internal/adapter/repository/memory"
	"github.com/simaogato/fundbalance-backend/internal/adapter/repository/sqldb"
	"github.com/simaogato/fundbalance-backend/internal/config"
	"github.com/simaogato/fundbalance-backend/internal/domain"
	"github.com/simaogato/fundbalance-backend/internal/scheduler"
	"github.com/simaogato/fundbalance-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
	"github.com/simaogato/fundbalance-backend/internal/usecase/seeder"
	"github.com/simaogato/fundbalance-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	logger.SetGlobalLogger(log)
	log.Info().Str("driver", cfg.Database.Driver).Msg("Starting fundbalance")

	// 2. Repositories
	portfolioRepo, historyRepo, closeDB, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer closeDB()

	ctx := context.Background()
	if cfg.Rebalance.SeedDefaults {
		seeded, err := seeder.NewPortfolioSeeder(portfolioRepo).Seed(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed default portfolio")
		}
		if seeded {
			log.Info().Msg("Default portfolio seeded")
		}
	}

	// 3. Services (Use Cases)
	portfolioService := portfolio.NewPortfolioService(portfolioRepo, cfg.Rebalance.EnforceWeightCap)
	historyService := history.NewHistoryService(historyRepo)
	rebalanceService := rebalance.NewRebalanceService(
		portfolioService,
		historyService,
		decimal.NewFromFloat(cfg.Rebalance.DefaultThreshold),
	)
	dashboardService := dashboard.NewDashboardService(portfolioService, historyService)

	// 4. Scheduled snapshots
	var sched *scheduler.Scheduler
	if cfg.Rebalance.Schedule != "" {
		sched = scheduler.New(log, time.Minute)
		if err := sched.AddJob(cfg.Rebalance.Schedule, scheduler.NewRebalanceJob(rebalanceService, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register rebalance job")
		}
		sched.Start()
	}

	// 5. HTTP API
	srv := httpadapter.New(httpadapter.Config{
		Log:              log,
		Port:             cfg.Server.HTTPPort,
		HistoryLimit:     cfg.Rebalance.HistoryLimit,
		RateLimitRPS:     cfg.Server.RateLimitRPS,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		PortfolioService: portfolioService,
		RebalanceService: rebalanceService,
		HistoryService:   historyService,
		DashboardService: dashboardService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP API")
		}
	}()

	// 6. gRPC admin surface
	var grpcListener *grpcadapter.Listener
	if cfg.Server.GRPCPort != 0 {
		grpcListener = grpcadapter.NewListener(log, cfg.Server.GRPCPort, cfg.Server.APIToken,
			grpcadapter.NewServer(portfolioService, rebalanceService, historyService, cfg.Rebalance.HistoryLimit))

		go func() {
			if err := grpcListener.Serve(); err != nil {
				log.Fatal().Err(err).Msg("Failed to serve gRPC server")
			}
		}()
	}

	log.Info().
		Int("http_port", cfg.Server.HTTPPort).
		Int("grpc_port", cfg.Server.GRPCPort).
		Msg("Server started successfully")

	waitForShutdown(log, srv, grpcListener, sched)
}

// openRepositories returns the stores for the configured driver and a function releasing them
func openRepositories(cfg *config.Config, log zerolog.Logger) (domain.PortfolioRepository, domain.HistoryRepository, func(), error) {
	var (
		db  *sqldb.DB
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return memory.NewPortfolioRepository(), memory.NewHistoryRepository(), func() {}, nil
	case config.DriverPostgres:
		db, err = sqldb.NewPostgres(cfg.Database.ConnStr)
	default:
		db, err = sqldb.NewSQLite(cfg.Database.Path)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	return sqldb.NewPortfolioRepository(db), sqldb.NewHistoryRepository(db), closeDB, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down every listener
func waitForShutdown(log zerolog.Logger, srv *httpadapter.Server, grpcListener *grpcadapter.Listener, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	if grpcListener != nil {
		grpcListener.Stop()
	}

	log.Info().Msg("Server stopped")
}
