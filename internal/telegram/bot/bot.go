package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/telegram/handlers"
	"github.com/futig/ba-assistant/internal/telegram/middleware"
	"github.com/futig/ba-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const callbackAck = "⏳ Обрабатываю запрос..."

// API is the part of tgbotapi.BotAPI the bot loop needs
type API interface {
	handlers.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api          API
	cfg          *config.TelegramConfig
	sender       *handlers.MessageSender
	conversation handlers.Handler
	commands     handlers.Handler
	callbacks    handlers.Handler
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// Connect authorizes the bot token against the Telegram API
func Connect(cfg *config.TelegramConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)
	return api, nil
}

// New creates a bot around an authorized API client
func New(api API, cfg *config.TelegramConfig, sender *handlers.MessageSender, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		sender:      sender,
		logger:      logger,
		stopChan:    make(chan struct{}),
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
	}
}

// RegisterHandlers sets the handlers for free text, commands and buttons
func (b *Bot) RegisterHandlers(conversation, commands, callbacks handlers.Handler) {
	b.conversation = conversation
	b.commands = commands
	b.callbacks = callbacks
	b.logger.Info("telegram handlers registered")
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	if b.conversation == nil || b.commands == nil || b.callbacks == nil {
		return fmt.Errorf("telegram handlers are not registered")
	}
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limiting, logging and recovery around the update
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}
	if message.From != nil {
		msg.UserID = message.From.ID
	}

	var handler handlers.Handler
	switch {
	case message.IsCommand():
		msg.Command = message.Command()
		handler = b.commands
	case message.Text == "":
		_ = b.sender.Send(ctx, msg.ChatID, render.MsgUnsupported, nil)
		return
	default:
		handler = b.conversation
	}

	if err := handler.Handle(ctx, msg); err != nil {
		b.sender.HandleError(ctx, msg.ChatID, err)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// answer right away so Telegram does not expire the query
	b.answerCallback(ctx, query.ID, callbackAck)

	if query.Message == nil {
		ctxzap.Warn(ctx, "callback without message", zap.String("data", query.Data))
		return
	}

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("data", query.Data),
		zap.Int64("user_id", msg.UserID),
	)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.callbacks.Handle(ctx, msg); err != nil {
			b.sender.HandleError(ctx, msg.ChatID, err)
		}
	}()
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Error(ctx, "failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
