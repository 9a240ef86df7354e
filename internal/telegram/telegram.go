package telegram

import (
	"context"

	"github.com/futig/ba-assistant/internal/config"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/futig/ba-assistant/internal/telegram/bot"
	"github.com/futig/ba-assistant/internal/telegram/handlers"
	"github.com/futig/ba-assistant/internal/telegram/keyboard"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes the token and wires the handlers to the assistant
func NewBot(
	cfg *config.TelegramConfig,
	assistant handlers.AssistantUsecase,
	artifacts handlers.ArtifactStore,
	logger *zap.Logger,
) (Bot, error) {
	api, err := bot.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	b := newBot(api, cfg, assistant, artifacts, logger)
	logger.Info("telegram bot initialized successfully")
	return b, nil
}

func newBot(
	api bot.API,
	cfg *config.TelegramConfig,
	assistant handlers.AssistantUsecase,
	artifacts handlers.ArtifactStore,
	logger *zap.Logger,
) *bot.Bot {
	sender := handlers.NewMessageSender(api, *pkgRetry.DefaultRetryConfig())
	kb := keyboard.NewBuilder()

	conversation := handlers.NewConversationHandler(api, sender, assistant, artifacts, kb, logger)
	commands := handlers.NewCommandHandler(sender, assistant, kb)
	callbacks := handlers.NewCallbackHandler(conversation, commands)

	b := bot.New(api, cfg, sender, logger)
	b.RegisterHandlers(conversation, commands, callbacks)
	return b
}
