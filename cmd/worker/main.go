package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coach-server/internal/adapter/repo"
	"coach-server/internal/infra"
	"coach-server/internal/pipeline"
	"coach-server/internal/providers/plan"
	"coach-server/internal/queue"
	"coach-server/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	if err := repo.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to run migrations")
	}

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer redisClient.Close()

	generator := plan.NewProgramGenerator(plan.GeminiOptions{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Fallback: plan.NewStaticProgramGenerator(),
	})

	worker := pipeline.NewWorker(
		repo.NewJobRepository(pool),
		queue.NewRedisQueue(redisClient),
		generator,
		logger,
		pipeline.WorkerOptions{
			GenerationTimeout: cfg.GenerationTimeout,
			SweepInterval:     cfg.PendingSweepInterval,
		},
	)

	// The worker has no API listener, so its counters need their own
	// exposition endpoint.
	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, telemetry.Handler()); err != nil {
			logger.Error().Err(err).Msg("worker: metrics server stopped")
		}
	}()

	logger.Info().Str("metrics_addr", cfg.MetricsAddr).Msg("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker stopped")
}
