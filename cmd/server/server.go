package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/formgrid/forms-api/internal/config"
	"github.com/formgrid/forms-api/internal/infrastructure/blobstore"
	"github.com/formgrid/forms-api/internal/infrastructure/crontab"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/observability"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	blobStore  *blobstore.Storage
	config     *config.Config
}

func (application *Application) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf(":%d", application.config.MetricsPort), mux)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.httpServer.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.GetLogger()
		boot.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		boot := logger.GetLogger()
		boot.Fatal().Err(err).Msg("configure logger")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	application, err := CreateApplication(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}

	if application.blobStore != nil {
		if err := application.blobStore.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Msg("prepare attachment bucket")
		}
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("metrics_port", cfg.MetricsPort).
		Str("environment", cfg.Environment).
		Msg("starting forms api")

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
