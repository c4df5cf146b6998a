package app

import (
	"context"
	"log/slog"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/infrastructure/gatewayapi"
	"NewsRecommender/internal/infrastructure/telegram"
	"NewsRecommender/internal/logging"
)

// BotApp wires the Telegram delivery bot to the gateway API.
type BotApp struct {
	bot *telegram.Bot
}

// NewBotApp builds a runnable bot instance.
func NewBotApp(cfg config.Config, baseLogger *slog.Logger) *BotApp {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	gateway := gatewayapi.NewClient(cfg.Telegram.GatewayURL)
	bot := telegram.NewBot(cfg.Telegram.BotToken, gateway, baseLogger.With("component", "bot"))

	return &BotApp{bot: bot}
}

// Run polls Telegram until the context is cancelled.
func (a *BotApp) Run(ctx context.Context) error {
	return a.bot.Run(ctx)
}
