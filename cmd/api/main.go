package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drivewise/drivewise-backend/api/routes"
	"github.com/drivewise/drivewise-backend/internal/chain"
	"github.com/drivewise/drivewise-backend/internal/events"
	"github.com/drivewise/drivewise-backend/internal/leaderboard"
	"github.com/drivewise/drivewise-backend/internal/tokens"
	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/config"
	"github.com/drivewise/drivewise-backend/pkg/db"
	"github.com/drivewise/drivewise-backend/pkg/logger"
	"github.com/drivewise/drivewise-backend/pkg/metrics"
	"github.com/drivewise/drivewise-backend/pkg/migrate"
	"github.com/drivewise/drivewise-backend/pkg/redis"
)

const shutdownGrace = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	tiers, err := tokens.ParseTierTable(cfg.Tokens.Tiers)
	if err != nil {
		logg.Error(context.Background(), "invalid token tier config", err)
		os.Exit(1)
	}

	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	tokenRepo := tokens.NewRepository(dbClient.DB())
	leaderboardRepo := leaderboard.NewRepository(dbClient.DB())
	eventRepo := events.NewRepository(dbClient.DB())

	rankerMetrics := metrics.NewRankerMetrics(prometheus.DefaultRegisterer)

	leaderboardService, err := leaderboard.NewService(leaderboard.ServiceParams{
		Repo:        leaderboardRepo,
		VehicleRepo: vehicleRepo,
		Tx:          dbClient,
		Cache:       redisClient,
		Metrics:     rankerMetrics,
		Logger:      logg,
		MinTrips:    cfg.Leaderboard.MinTrips,
		ViewLimit:   cfg.Leaderboard.DefaultLimit,
		CacheTTL:    cfg.Leaderboard.CacheTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create leaderboard service", err)
		os.Exit(1)
	}

	notifier := chain.New(cfg.Chain, logg)

	eventsService, err := events.NewService(events.ServiceParams{
		EventRepo:   eventRepo,
		VehicleRepo: vehicleRepo,
		TokenRepo:   tokenRepo,
		Tx:          dbClient,
		Ranker:      leaderboardService,
		Notifier:    notifier,
		Tiers:       tiers,
		Logger:      logg,
		MinTrips:    cfg.Leaderboard.MinTrips,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	vehiclesService, err := vehicles.NewService(vehicles.ServiceParams{
		VehicleRepo: vehicleRepo,
		TokenReader: tokenRepo,
		MinTrips:    cfg.Leaderboard.MinTrips,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}

	tokensService, err := tokens.NewService(tokens.ServiceParams{
		TokenRepo:   tokenRepo,
		VehicleRepo: vehicleRepo,
		Claimer:     notifier,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create token service", err)
		os.Exit(1)
	}

	chainService, err := chain.NewService(chain.ServiceParams{
		Notifier: notifier,
		Vehicles: vehicleRepo,
		Entries:  leaderboardRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chain service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			eventsService,
			leaderboardService,
			vehiclesService,
			tokensService,
			chainService,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
