package handlers

import (
	"context"
	"strconv"
)

const sessionPrefix = "tg-"

// Message represents a normalized Telegram message or button press
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	CallbackData string
	CallbackID   string
}

// Handler processes one kind of update
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	sender *MessageSender
}

// sendMessage is a convenience wrapper for sender.Send that only logs failures
func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string, markup any) {
	_ = h.sender.Send(ctx, chatID, text, markup)
}

// SessionID is the assistant session bound to a chat. It is stable across
// restarts so the stored knowledge base is picked up again.
func SessionID(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}
