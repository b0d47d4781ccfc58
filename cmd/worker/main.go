package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flynext/internal/handler/middleware"
	"flynext/internal/infra/db"
	"flynext/internal/infra/notifier"
	"flynext/internal/pkg/config"
	"flynext/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Log).GetSlogLogger()

	pool, dbCleanup, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbCleanup()

	publisher, pubCleanup := notifier.NewPublisher(cfg.Kafka)
	defer pubCleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notification worker started", "topic", cfg.Kafka.NotificationTopic)

	w := worker.New(pool, publisher, 5*time.Second)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("notification worker stopped")
}
