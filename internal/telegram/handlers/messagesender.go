package handlers

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/futig/ba-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MessageSender provides centralized message sending with retries
// Failures are logged through the context logger.
type MessageSender struct {
	bot   Sender
	retry pkgRetry.RetryConfig
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot Sender, retryCfg pkgRetry.RetryConfig) *MessageSender {
	return &MessageSender{
		bot:   bot,
		retry: retryCfg,
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return s.send(ctx, chatID, msg)
}

// SendLong splits text to the Telegram limit; markup goes with the last part.
func (s *MessageSender) SendLong(ctx context.Context, chatID int64, text string, markup any) error {
	parts := render.Split(text, render.MaxMessageRunes)
	for i, part := range parts {
		var m any
		if i == len(parts)-1 {
			m = markup
		}
		if err := s.Send(ctx, chatID, part, m); err != nil {
			return fmt.Errorf("send part %d of %d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

// SendDocument uploads data as a file
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	return s.send(ctx, chatID, doc)
}

func (s *MessageSender) send(ctx context.Context, chatID int64, c tgbotapi.Chattable) error {
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			_, err := s.bot.Send(c)
			return err
		},
		append(s.retry.ToRetryOptions(ctx),
			retry.OnRetry(func(n uint, err error) {
				ctxzap.Warn(ctx, "failed to send message, retrying",
					zap.Error(err),
					zap.Uint("attempt", n+1),
					zap.Int64("chat_id", chatID),
				)
			}),
		)...,
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int("attempts", attempt),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}
