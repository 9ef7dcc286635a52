package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	mqcontracts "habitpulse/contracts/mq"
	"habitpulse/internal/cache"
	"habitpulse/internal/config"
	"habitpulse/internal/mqhandler"
	"habitpulse/internal/repository"
	"habitpulse/internal/service/dashboard"
	"habitpulse/pkg/db"
	"habitpulse/pkg/logger"
	"habitpulse/pkg/mq"
	"habitpulse/pkg/otel"
	"habitpulse/pkg/redis"
	"habitpulse/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Config load failed", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Logger.Level)
	defer log.Sync()

	log.Info("Starting analytics worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Worker exited with error", zap.Error(err))
	}
	log.Info("Worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	shutdownOtel, err := otel.Init(ctx, otel.Config{
		ServiceName:    "habitpulse-worker",
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

	// Redis
	rdb, err := redis.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, cfg.DedupTTL(), log)
	retryCounter := util.NewRetryCounter(rdb, cfg.DedupTTL())

	// DB
	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	log.Info("DB ready")

	// publisher
	publisher, err := mq.NewPublisher(cfg.MQ)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := dashboard.NewService(
		repository.NewHabitRepository(pool),
		repository.NewActivityLogRepository(pool),
		cache.NewDashboardCache(rdb, cache.Config{TTL: cfg.CacheTTL(), Breaker: cfg.BreakerConfig()}, log),
		dashboard.NewClock(loc),
		log,
	)

	// -------------------------
	// Activity Logged Consumer
	// -------------------------
	log.Info("Init consumer", zap.String("queue", mqcontracts.QueueActivityLogged))
	consumer, err := mq.NewConsumer(
		cfg.MQ,
		mqcontracts.QueueActivityLogged,
		mqcontracts.RoutingActivityLogged,
		log,
	)
	if err != nil {
		return err
	}
	defer consumer.Close()

	handler := mqhandler.NewActivityLoggedHandler(svc, publisher, deduper, retryCounter, cfg.Worker.MaxRetries, log)
	consumer.SetHandler(handler.Handle)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.StartConsuming(ctx); err != nil {
			log.Error("Activity consumer stopped", zap.Error(err))
			errCh <- err
			cancel()
		}
	}()

	// -------------------------
	// Streak Snapshot Loop
	// -------------------------
	snapshots := mqhandler.NewStreakSnapshotJob(svc, publisher, cfg.SnapshotInterval(), log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		snapshots.Run(ctx)
	}()

	log.Info("Worker running")
	<-ctx.Done()
	log.Info("Shutting down worker")
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
