package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drivewise/drivewise-backend/internal/leaderboard"
	"github.com/drivewise/drivewise-backend/internal/vehicles"
	"github.com/drivewise/drivewise-backend/pkg/config"
	"github.com/drivewise/drivewise-backend/pkg/db"
	"github.com/drivewise/drivewise-backend/pkg/logger"
	"github.com/drivewise/drivewise-backend/pkg/metrics"
	"github.com/drivewise/drivewise-backend/pkg/migrate"
	"github.com/drivewise/drivewise-backend/pkg/redis"
)

const rebuildTrigger = "timer"

func main() {
	logg := logger.New(logger.Options{ServiceName: "ranker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "ranker"

	logg = logger.New(logger.Options{
		ServiceName: "ranker",
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

	rankerMetrics := metrics.NewRankerMetrics(prometheus.DefaultRegisterer)

	service, err := leaderboard.NewService(leaderboard.ServiceParams{
		Repo:        leaderboard.NewRepository(dbClient.DB()),
		VehicleRepo: vehicles.NewRepository(dbClient.DB()),
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

	lock, err := leaderboard.NewRebuildLock(redisClient, redisClient.LockKey("leaderboard"), cfg.Leaderboard.RebuildInterval)
	if err != nil {
		logg.Error(context.Background(), "failed to create rebuild lock", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Leaderboard.RebuildInterval.String(),
	})
	logg.Info(ctx, "starting leaderboard ranker")

	ticker := time.NewTicker(cfg.Leaderboard.RebuildInterval)
	defer ticker.Stop()

	for {
		rebuildOnce(ctx, logg, service, lock)

		select {
		case <-ctx.Done():
			logg.Info(ctx, "ranker shutting down gracefully")
			return
		case <-ticker.C:
		}
	}
}

func rebuildOnce(ctx context.Context, logg *logger.Logger, service leaderboard.Service, lock leaderboard.Lock) {
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logg.Error(ctx, "failed to acquire rebuild lock", err)
		return
	}
	if !acquired {
		logg.Info(ctx, "rebuild lock held elsewhere, skipping cycle")
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logg.Error(ctx, "failed to release rebuild lock", err)
		}
	}()

	if err := service.Rebuild(ctx, rebuildTrigger); err != nil {
		logg.Error(ctx, "leaderboard rebuild failed", err)
	}
}
