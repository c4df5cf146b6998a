package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NewsRecommender/internal/app"
	"NewsRecommender/internal/config"
	"NewsRecommender/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	service := app.NewRecommenderService(cfg, logger)

	if err := service.Run(ctx); err != nil {
		logger.Error("recommender stopped", "error", err)
		os.Exit(1)
	}
}
