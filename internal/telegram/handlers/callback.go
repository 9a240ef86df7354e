package handlers

import (
	"context"
	"fmt"

	"github.com/futig/ba-assistant/internal/telegram/keyboard"
)

// turnShortcuts are the texts a button sends on the user's behalf.
var turnShortcuts = map[string]string{
	keyboard.TurnDocument: "Сформируй документ",
	keyboard.TurnMissing:  "Чего не хватает?",
	keyboard.TurnProceed:  "Сформируй документ по имеющимся данным",
}

// CallbackHandler turns button presses into conversation turns or commands
type CallbackHandler struct {
	conversation Handler
	commands     Handler
}

func NewCallbackHandler(conversation, commands Handler) *CallbackHandler {
	return &CallbackHandler{
		conversation: conversation,
		commands:     commands,
	}
}

// Handle implements Handler
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	switch cb.Action {
	case keyboard.ActionTurn:
		text, ok := turnShortcuts[cb.Value]
		if !ok {
			return fmt.Errorf("unknown turn shortcut %q", cb.Value)
		}
		return h.conversation.Handle(ctx, &Message{ChatID: msg.ChatID, UserID: msg.UserID, Text: text})
	case keyboard.ActionCommand:
		return h.commands.Handle(ctx, &Message{ChatID: msg.ChatID, UserID: msg.UserID, Command: cb.Value})
	default:
		return fmt.Errorf("unknown callback action %q", cb.Action)
	}
}
