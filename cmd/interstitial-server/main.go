package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/api"
	"github.com/patrickwarner/interstitial/internal/app"
	"github.com/patrickwarner/interstitial/internal/config"
	"github.com/patrickwarner/interstitial/internal/middleware"
	"github.com/patrickwarner/interstitial/internal/observability"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer shutdown()
		}
	}

	metricsRegistry := observability.NewPrometheusRegistry()

	pipeline, err := app.New(ctx, cfg, logger, metricsRegistry)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	defer pipeline.Close()

	srvDeps := api.NewServer(logger, metricsRegistry, pipeline.Coordinators, pipeline.Bootstrap, pipeline.Consent, pipeline.Device, cfg)

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))
	srvDeps.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.ServiceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Interstitial control server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	// Warm the SDK and every configured unit without holding up the listener.
	go func() {
		if err := pipeline.Bootstrap.Start(ctx); err != nil {
			logger.Warn("initial ad sdk start failed", zap.Error(err))
			return
		}
		for _, unit := range pipeline.Coordinators.Units() {
			pipeline.Coordinators.Get(unit).Preload(ctx)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
