package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/vessel-tracking-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/vessel-tracking-service/internal/adapter/kafka"
	"github.com/couchcryptid/vessel-tracking-service/internal/config"
	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/ingest"
	"github.com/couchcryptid/vessel-tracking-service/internal/observability"
	"github.com/couchcryptid/vessel-tracking-service/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Pick the primary position source. Synthetic mode (the default) ignores
	// any configured feed; a nil primary means synthetic only.
	source := ingest.SourceFromConfig(cfg)
	switch {
	case source == nil:
		logger.Info("using synthetic position feed")
	case cfg.SourceURL != "":
		logger.Info("using http position feed", "url", cfg.SourceURL)
	default:
		logger.Info("using file position feed", "path", cfg.SourcePath)
	}

	store := tracker.NewPositionStore()
	loader := ingest.NewLoader(source, ingest.NewSyntheticSource(clock), store, logger, metrics)
	svc := tracker.NewService(store, loader, clock, logger, metrics)

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var publisher *kafkaadapter.Writer
	var callback tracker.SnapshotCallback
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaSinkTopic)
		callback = func(snapshot []domain.VesselPosition) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := publisher.PublishSnapshot(ctx, snapshot); err != nil {
				metrics.PublishErrors.Inc()
				logger.Error("snapshot publish failed", "error", err)
				return
			}
			metrics.SnapshotsPublished.Inc()
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Prime the store before the first tick so readiness flips quickly.
	go func() {
		if _, err := svc.ManualRefresh(ctx); err != nil {
			logger.Error("initial load failed", "error", err)
		}
	}()

	svc.StartRefresh(callback, cfg.RefreshInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	svc.StopRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
