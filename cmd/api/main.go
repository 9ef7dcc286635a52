package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitpulse/internal/api"
	"habitpulse/internal/cache"
	"habitpulse/internal/config"
	"habitpulse/internal/httpserver"
	"habitpulse/internal/repository"
	"habitpulse/internal/service/dashboard"
	"habitpulse/pkg/db"
	"habitpulse/pkg/logger"
	"habitpulse/pkg/otel"
	"habitpulse/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger 尚未初始化
		zap.NewExample().Fatal("Config load failed", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Logger.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("API server exited with error", zap.Error(err))
	}
	log.Info("API server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	shutdownOtel, err := otel.Init(ctx, otel.Config{
		ServiceName:    "habitpulse-api",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		return err
	}
	defer shutdownOtel()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// DB
	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Redis
	rdb, err := redis.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// repositories / cache / service
	habits := repository.NewHabitRepository(pool)
	logs := repository.NewActivityLogRepository(pool)
	dashCache := cache.NewDashboardCache(rdb, cache.Config{
		TTL:     cfg.CacheTTL(),
		Breaker: cfg.BreakerConfig(),
	}, log)
	svc := dashboard.NewService(habits, logs, dashCache, dashboard.NewClock(loc), log)

	router := httpserver.NewRouter(httpserver.Dependencies{
		Dashboard: api.NewDashboardHandler(svc, log),
		JWTSecret: cfg.JWT.Secret,
		Checks: map[string]httpserver.ReadinessCheck{
			"db": pool.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		Logger: log,
	})
	srv := router.Server(cfg.ListenAddr())

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
