package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/app"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cli.Version))
	logger.Info("starting discipline worker")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.RestoreReminder(ctx); err != nil {
		logger.Error("failed to restore reminder", "error", err)
		os.Exit(1)
	}
	logger.Info("reminder scheduler started", "reminders", len(container.Reminders.Entries()))

	consumer, err := container.ConnectReminderConsumer()
	switch {
	case err != nil && cfg.IsDevelopment():
		logger.Warn("RabbitMQ consumer not available, reminder changes from other processes need a restart", "error", err)
	case err != nil:
		logger.Error("failed to connect RabbitMQ consumer", "error", err)
		os.Exit(1)
	case consumer != nil:
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", "error", err)
			}
		}()
	}

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           container.HealthHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	interval := cfg.WorkerStatsInterval
	if interval <= 0 {
		interval = time.Hour
	}
	statsTicker := time.NewTicker(interval)
	defer statsTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("discipline worker stopped")
			return
		case <-statsTicker.C:
			stats := container.Stats()
			logger.Info("worker stats",
				"reminders", len(stats.Reminders),
				"reminders_fired", stats.Counters[observability.MetricRemindersFired],
				"saves", stats.Counters[observability.MetricStoreSaveSucceeded],
				"save_failures", stats.Counters[observability.MetricStoreSaveFailed],
			)
		}
	}
}
