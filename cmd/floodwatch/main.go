package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/ksandaruwan/floodwatch/internal/adapter/http"
	kafkaadapter "github.com/ksandaruwan/floodwatch/internal/adapter/kafka"
	"github.com/ksandaruwan/floodwatch/internal/assessor"
	"github.com/ksandaruwan/floodwatch/internal/config"
	"github.com/ksandaruwan/floodwatch/internal/observability"
	"github.com/ksandaruwan/floodwatch/internal/provider/nominatim"
	"github.com/ksandaruwan/floodwatch/internal/provider/openmeteo"
	"github.com/ksandaruwan/floodwatch/internal/provider/overpass"
	"github.com/ksandaruwan/floodwatch/internal/provider/wikipedia"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	providers := assessor.Providers{
		Samples:   openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.ProviderTimeout, logger),
		Hydrology: overpass.NewClient(cfg.OverpassBaseURL, cfg.ProviderTimeout, logger),
		Geocoder: nominatim.NewCachedGeocoder(
			nominatim.NewClient(cfg.NominatimBaseURL, cfg.ProviderTimeout, logger),
			cfg.GeocodeCacheSize, metrics),
		History: wikipedia.NewClient(cfg.WikipediaBaseURL, cfg.ProviderTimeout, logger),
	}

	opts := assessor.Options{
		Logger:               logger,
		Metrics:              metrics,
		MinScoringLatency:    cfg.ScoringMinLatency,
		DefaultDurationHours: cfg.DefaultDurationHours,
	}

	// Alert publishing is feature-flagged via ALERTS_ENABLED / KAFKA_BROKERS.
	var alertWriter *kafkaadapter.Writer
	if cfg.AlertsEnabled {
		alertWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaAlertsTopic, logger)
		opts.Alerts = alertWriter
		logger.Info("kafka alerts enabled", "topic", cfg.KafkaAlertsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka alerts disabled")
	}

	a := assessor.New(providers, opts)

	srv := httpadapter.NewServer(cfg.HTTPAddr, a, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
