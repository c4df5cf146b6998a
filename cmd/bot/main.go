package main

import (
	"context"
	"errors"
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

	bot := app.NewBotApp(cfg, logger)

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
