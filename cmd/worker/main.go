package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivesight/drivesight/internal/bootstrap"
	"github.com/drivesight/drivesight/internal/config"
	"github.com/drivesight/drivesight/internal/core/domain"
	"github.com/drivesight/drivesight/internal/observability/logging"
	"github.com/drivesight/drivesight/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	if cfg.NATSURL == "" {
		slog.Error("worker requires NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.EventBus.SubscribeSignIdentified(ctx, func(handlerCtx context.Context, event domain.IdentificationEvent) error {
		workerMetrics.ObserveQueueLag("worker", time.Since(time.UnixMilli(event.OccurredAt)))

		var recordErr error
		if app.Analytics != nil {
			recordCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Second)
			defer cancel()
			recordErr = app.Analytics.RecordIdentification(recordCtx, event)
		}
		workerMetrics.RecordEvent("worker", string(event.Category), recordErr)

		if recordErr != nil {
			return recordErr
		}
		slog.Debug("identification event recorded",
			"sign", event.Name,
			"category", event.Category,
			"confidence", event.Confidence,
		)
		return nil
	})
	if err != nil {
		slog.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}
}
