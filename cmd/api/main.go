package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wiki-quiz/internal/adapters/api"
	"wiki-quiz/internal/app"
	"wiki-quiz/internal/infra/config"
	httpinfra "wiki-quiz/internal/infra/http"
	applog "wiki-quiz/internal/infra/log"
	"wiki-quiz/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось собрать сервис")
	}
	defer application.Close()

	server := httpinfra.NewServer(applog.Component(logger, "http"), cfg.AllowOrigins)
	api.NewHandler(application.Service, applog.Component(logger, "api")).Register(server.Router)

	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)
	}

	go func() {
		if err := server.Start(cfg.Addr()); err != nil {
			logger.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: graceful shutdown failed")
	}
}
