package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard is shown with the welcome message
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Сформировать документ", EncodeCallback(ActionTurn, TurnDocument)),
		),
	)
}

// ConversationKeyboard follows every assistant reply
func (b *Builder) ConversationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Сформировать документ", EncodeCallback(ActionTurn, TurnDocument)),
			tgbotapi.NewInlineKeyboardButtonData("❓ Чего не хватает", EncodeCallback(ActionTurn, TurnMissing)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏩ По имеющимся данным", EncodeCallback(ActionTurn, TurnProceed)),
			tgbotapi.NewInlineKeyboardButtonData("🧹 Начать заново", EncodeCallback(ActionCommand, CommandReset)),
		),
	)
}

// Bot commands
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandReset     = "reset"
	CommandKnowledge = "knowledge"
)
