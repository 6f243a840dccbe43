package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"webstack/internal/api"
	"webstack/internal/config"
	"webstack/internal/counter"
	"webstack/internal/limits"
	"webstack/internal/obs"
	"webstack/internal/runtime"
	"webstack/internal/server"
	"webstack/internal/tasks"
	"webstack/internal/visits"
)

var version = "dev"

func main() {
	path, err := config.PathFromArgs("web", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("parse flags")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout).
		With().Str("service", "web").Logger()

	warnings, err := config.ValidateWeb(cfg)
	for _, warning := range warnings {
		logger.Warn().Msg(warning)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	hub, err := obs.InitSentry(cfg.SentryDSN, version, "web")
	if err != nil {
		logger.Fatal().Err(err).Msg("init sentry")
	}
	defer obs.FlushSentry(hub, 2*time.Second)

	hits, err := counter.Open(cfg.CounterURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open counter store")
	}
	defer hits.Close()

	store, err := visits.Open(cfg.DBURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open relational store")
	}
	defer store.Close()

	queue, err := tasks.NewQueue(cfg.RedisURL, tasks.QueueConfig{
		Queue:     cfg.Task.Queue,
		Retention: time.Duration(cfg.Task.ResultTTLSeconds) * time.Second,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open task queue")
	}
	defer queue.Close()

	checkConnectivity(logger, map[string]pinger{"counter": hits, "database": store})

	limitConfig, err := limits.FromConfig(cfg.Limits)
	if err != nil {
		logger.Fatal().Err(err).Msg("limits")
	}
	shutdownConfig, err := runtime.ShutdownFromConfig(cfg.Shutdown)
	if err != nil {
		logger.Fatal().Err(err).Msg("shutdown")
	}

	metrics := obs.NewMetrics()
	inflight := runtime.NewInflightTracker()
	handler := api.NewHandler(api.Config{
		Counter:      hits,
		Visits:       store,
		Tasks:        queue,
		Metrics:      metrics,
		Logger:       logger,
		Sentry:       hub,
		Inflight:     inflight,
		MaxBodyBytes: limitConfig.MaxBodyBytes,
	})

	srv, err := server.Start(handler, cfg.ListenAddr, server.Options{
		Limits:   limitConfig,
		Shutdown: shutdownConfig,
		Inflight: inflight,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("start server")
	}
	logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig
	logger.Info().Str("signal", received.String()).Msg("shutting down")

	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// checkConnectivity logs unreachable collaborators at startup. It does not
// abort: requests answer 503 until the backend comes up.
func checkConnectivity(logger zerolog.Logger, deps map[string]pinger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var wg conc.WaitGroup
	for name, dep := range deps {
		wg.Go(func() {
			if err := dep.Ping(ctx); err != nil {
				logger.Warn().Err(err).Str("collaborator", name).Msg("not reachable at startup")
				return
			}
			logger.Info().Str("collaborator", name).Msg("reachable")
		})
	}
	wg.Wait()
}
