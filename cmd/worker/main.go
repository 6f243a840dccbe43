package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"webstack/internal/config"
	"webstack/internal/obs"
	"webstack/internal/runtime"
	"webstack/internal/server"
	"webstack/internal/tasks"
)

const healthService = "webstack.worker"

func main() {
	path, err := config.PathFromArgs("worker", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("parse flags")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout).
		With().Str("service", "worker").Logger()

	warnings, err := config.ValidateWorker(cfg)
	for _, warning := range warnings {
		logger.Warn().Msg(warning)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	shutdownConfig, err := runtime.ShutdownFromConfig(cfg.Shutdown)
	if err != nil {
		logger.Fatal().Err(err).Msg("shutdown")
	}

	var metrics *obs.Metrics
	if cfg.Worker.MetricsAddr != "" {
		metrics = obs.NewMetrics()
	}
	srv, mux, err := tasks.NewServer(cfg.RedisURL, tasks.WorkerConfig{
		Concurrency: cfg.Worker.Concurrency,
		Queue:       cfg.Task.Queue,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build worker")
	}

	health, err := server.StartHealth(cfg.Worker.HealthAddr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("start health server")
	}
	logger.Info().Str("addr", health.Addr).Msg("health listening")

	// Health checks see NOT_SERVING before asynq stops pulling, so no new work is
	// routed here while in-flight tasks finish.
	stopConsuming := server.StopFunc(func(context.Context) error {
		health.SetServing(healthService, false)
		srv.Stop()
		return nil
	})

	var metricsServer *server.Server
	if metrics != nil {
		metricsServer, err = server.Start(metrics.Handler(), cfg.Worker.MetricsAddr, server.Options{
			Shutdown: shutdownConfig,
			Stoppers: []server.Stopper{stopConsuming},
			Logger:   logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("start metrics server")
		}
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
	}

	if err := srv.Start(mux); err != nil {
		health.Stop()
		logger.Fatal().Err(err).Msg("start worker")
	}
	health.SetServing(healthService, true)
	logger.Info().Str("queue", cfg.Task.Queue).Int("concurrency", cfg.Worker.Concurrency).Msg("consuming")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	logger.Info().Str("signal", received.String()).Msg("shutting down")

	// The metrics listener runs stopConsuming as part of its own shutdown;
	// without one it is called directly.
	if metricsServer != nil {
		if err := metricsServer.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown")
		}
	} else {
		_ = stopConsuming.Stop(context.Background())
	}
	srv.Shutdown()
	health.Stop()
}
