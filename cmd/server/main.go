package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitchenledger/internal/config"
	"kitchenledger/internal/infra"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/router"
	"kitchenledger/internal/service"
	"kitchenledger/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.JobHandler{
		worker.JobTypeBriefEmail: worker.NewEmailWorker(mailer, infra.DefaultRetryPolicy()),
	})

	advisoryCB := infra.NewBreaker(infra.BreakerConfig{
		Threshold: cfg.AdvisoryBreakerThreshold,
		Cooldown:  cfg.AdvisoryBreakerCooldown,
	})
	advisory, err := infra.NewAdvisoryFromConfig(cfg, advisoryCB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure advisory client")
	}

	loc := cfg.Location()
	analyzer := worker.NewMenuAnalyzer(
		repository.NewDishRepository(db),
		repository.NewInventoryRepository(db),
		service.NewNotificationService(repository.NewNotificationRepository(db)),
		advisory,
		dispatcher,
		worker.AnalyzerConfig{
			LowStockThreshold:  cfg.LowStockThreshold,
			HighStockThreshold: cfg.HighStockThreshold,
			ExpiryWindowDays:   cfg.ExpiryWindowDays,
			TopSuggestions:     cfg.BriefTopSuggestions,
			Recipients:         cfg.Recipients(),
		},
		func() time.Time { return time.Now().In(loc) },
	)
	cronDone := worker.StartAnalyzerCron(ctx, worker.AnalyzerCronConfig{
		Analyzer:   analyzer,
		Interval:   cfg.AnalyzerInterval,
		RunOnStart: cfg.AnalyzerRunOnStart,
	})

	r := router.New(cfg, router.Deps{DB: db, Redis: rdb, Advisory: advisory, Analyzer: analyzer})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("kitchenledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	select {
	case <-cronDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("analyzer still running at shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
