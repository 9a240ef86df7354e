package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/logger"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/futig/ba-assistant/internal/telegram/keyboard"
	"github.com/futig/ba-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ConversationHandler forwards free text to the assistant and delivers the
// reply, its attachments and the publication outcome.
type ConversationHandler struct {
	BaseHandler
	bot            Sender
	assistant      AssistantUsecase
	artifacts      ArtifactStore
	keyboard       *keyboard.Builder
	logger         *zap.Logger
	typingInterval time.Duration
}

func NewConversationHandler(
	bot Sender,
	sender *MessageSender,
	assistant AssistantUsecase,
	artifacts ArtifactStore,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		BaseHandler:    BaseHandler{sender: sender},
		bot:            bot,
		assistant:      assistant,
		artifacts:      artifacts,
		keyboard:       keyboard,
		logger:         logger,
		typingInterval: TypingInterval,
	}
}

// Handle implements Handler
func (h *ConversationHandler) Handle(ctx context.Context, msg *Message) error {
	sessionID := SessionID(msg.ChatID)
	ctx = logger.WithAction(logger.WithSession(ctx, sessionID), "telegram_turn")

	// reopening is a no-op for a live session and restores the stored knowledge otherwise
	if _, err := h.assistant.OpenSession(ctx, sessionID); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	typing := NewTypingNotifier(h.bot, msg.ChatID, h.typingInterval, h.logger)
	typing.Start(ctx)
	resp, err := h.assistant.HandleTurn(ctx, sessionID, entity.TurnRequest{Text: msg.Text})
	typing.Stop()
	if err != nil {
		return fmt.Errorf("handle turn: %w", err)
	}

	ctxzap.Info(ctx, "telegram turn handled",
		zap.String("intent", string(resp.Intent)),
		zap.String("decision", string(resp.Decision)),
		zap.Int("attachments", len(resp.Message.Attachments)),
	)

	if err := h.sender.SendLong(ctx, msg.ChatID, resp.Message.Content, h.keyboard.ConversationKeyboard()); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	h.sendAttachments(ctx, msg.ChatID, resp.Message.Attachments)

	if resp.Publication != nil {
		h.sendMessage(ctx, msg.ChatID, render.RenderPublication(resp.Publication), nil)
	}
	return nil
}

func (h *ConversationHandler) sendAttachments(ctx context.Context, chatID int64, attachments []entity.Attachment) {
	if len(attachments) == 0 {
		return
	}
	h.sendMessage(ctx, chatID, render.MsgAttachments, nil)

	for _, att := range attachments {
		if err := h.sendAttachment(ctx, chatID, att); err != nil {
			ctxzap.Warn(ctx, "failed to deliver attachment",
				zap.String("name", att.Name),
				zap.Error(err),
			)
			h.sendMessage(ctx, chatID, fmt.Sprintf(render.ErrFileUnavailable, att.Name), nil)
		}
	}
}

func (h *ConversationHandler) sendAttachment(ctx context.Context, chatID int64, att entity.Attachment) error {
	id, ok := repository.ArtifactID(att.Locator)
	if !ok {
		return fmt.Errorf("%w: unexpected locator %q", entity.ErrArtifactNotFound, att.Locator)
	}
	artifact, err := h.artifacts.Get(ctx, id)
	if err != nil {
		return err
	}
	return h.sender.SendDocument(ctx, chatID, artifact.Name, artifact.Data)
}
