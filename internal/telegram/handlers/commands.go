package handlers

import (
	"context"
	"fmt"

	"github.com/futig/ba-assistant/internal/pkg/logger"
	"github.com/futig/ba-assistant/internal/telegram/keyboard"
	"github.com/futig/ba-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CommandHandler serves /start, /help, /reset and /knowledge
type CommandHandler struct {
	BaseHandler
	assistant AssistantUsecase
	keyboard  *keyboard.Builder
}

func NewCommandHandler(sender *MessageSender, assistant AssistantUsecase, keyboard *keyboard.Builder) *CommandHandler {
	return &CommandHandler{
		BaseHandler: BaseHandler{sender: sender},
		assistant:   assistant,
		keyboard:    keyboard,
	}
}

// Handle implements Handler
func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	sessionID := SessionID(msg.ChatID)
	ctx = logger.WithAction(logger.WithSession(ctx, sessionID), "telegram_command")

	ctxzap.Info(ctx, "command received", zap.String("command", msg.Command))

	switch msg.Command {
	case keyboard.CommandStart:
		if _, err := h.assistant.OpenSession(ctx, sessionID); err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		h.sendMessage(ctx, msg.ChatID, render.MsgWelcome, h.keyboard.StartKeyboard())

	case keyboard.CommandHelp:
		h.sendMessage(ctx, msg.ChatID, render.MsgHelp, nil)

	case keyboard.CommandReset:
		if err := h.assistant.ResetSession(ctx, sessionID); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		if _, err := h.assistant.OpenSession(ctx, sessionID); err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		h.sendMessage(ctx, msg.ChatID, render.MsgReset, nil)

	case keyboard.CommandKnowledge:
		if _, err := h.assistant.OpenSession(ctx, sessionID); err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		kb, err := h.assistant.Knowledge(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load knowledge: %w", err)
		}
		return h.sender.SendLong(ctx, msg.ChatID, render.RenderKnowledge(kb), nil)

	default:
		h.sendMessage(ctx, msg.ChatID, render.MsgUnknownCommand, nil)
	}
	return nil
}
