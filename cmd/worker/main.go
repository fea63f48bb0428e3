// Package main starts the extraction-queue worker. It drains the durable
// queue with skip-locked claims and periodically recovers stuck rows.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/app"
	"github.com/sponto/ses-match/internal/config"
	"github.com/sponto/ses-match/internal/observability"
	"github.com/sponto/ses-match/internal/runid"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg, "ses-match-worker")
	slog.SetDefault(logger)
	observability.InitMetrics()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", runid.Get())
	}

	queueRepo := postgres.NewQueueRepo(pool)
	emailRepo := postgres.NewEmailRepo(pool)

	recovery := app.NewStuckJobRecovery(queueRepo, cfg.MaxProcessingAge, cfg.RecoverInterval)
	go recovery.Run(ctx)

	worker := app.NewWorker(queueRepo, app.NewExtractionHandler(emailRepo), workerID, cfg.WorkerPollInterval)
	slog.Info("starting worker", slog.String("worker_id", workerID), slog.String("env", cfg.AppEnv))
	worker.Run(ctx)
}
