package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coach-server/internal/adapter/repo"
	"coach-server/internal/http/handlers"
	"coach-server/internal/http/httpapi"
	"coach-server/internal/infra"
	"coach-server/internal/pipeline"
	"coach-server/internal/providers/plan"
	"coach-server/internal/queue"
	"coach-server/internal/recommend"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := repo.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	dispatch := queue.NewRedisQueue(redisClient)
	jobs := repo.NewJobRepository(pool)

	app := handlers.NewApp(logger)
	app.Jobs = jobs
	app.Profiles = repo.NewProfileRepository(pool)
	app.Workouts = repo.NewWorkoutRepository(pool)
	app.Submitter = pipeline.NewSubmitter(jobs, dispatch, logger)
	app.Cache = recommend.NewStore(redisClient, recommend.StoreOptions{
		TTL: cfg.RecommendationTTL,
	}, logger)
	app.Recommender = plan.NewRecommendationGenerator(plan.GeminiOptions{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Fallback: plan.NewStaticRecommendationGenerator(),
	})

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
