package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/entity"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/futig/ba-assistant/internal/telegram/keyboard"
	"github.com/futig/ba-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBot struct {
	mu       sync.Mutex
	texts    []string
	markups  []any
	docs     []tgbotapi.DocumentConfig
	actions  int
	failures int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures > 0 {
		b.failures--
		return tgbotapi.Message{}, errors.New("telegram: Too Many Requests")
	}
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		b.texts = append(b.texts, m.Text)
		b.markups = append(b.markups, m.ReplyMarkup)
	case tgbotapi.DocumentConfig:
		b.docs = append(b.docs, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := c.(tgbotapi.ChatActionConfig); ok {
		b.actions++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeAssistant struct {
	opened []string
	reset  []string
	turns  []string
	resp   entity.TurnResponse
	err    error
	kb     entity.KnowledgeBase
}

func (f *fakeAssistant) OpenSession(_ context.Context, id string) (entity.StartSessionResponse, error) {
	f.opened = append(f.opened, id)
	return entity.StartSessionResponse{SessionID: id}, nil
}

func (f *fakeAssistant) HandleTurn(_ context.Context, _ string, req entity.TurnRequest) (entity.TurnResponse, error) {
	f.turns = append(f.turns, req.Text)
	return f.resp, f.err
}

func (f *fakeAssistant) ResetSession(_ context.Context, id string) error {
	f.reset = append(f.reset, id)
	return nil
}

func (f *fakeAssistant) Knowledge(context.Context, string) (entity.KnowledgeBase, error) {
	return f.kb, nil
}

type fakeArtifacts map[string]entity.Artifact

func (f fakeArtifacts) Get(_ context.Context, id string) (entity.Artifact, error) {
	a, ok := f[id]
	if !ok {
		return entity.Artifact{}, entity.ErrArtifactNotFound
	}
	return a, nil
}

func newSender(bot Sender) *MessageSender {
	return NewMessageSender(bot, pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
}

func newConversation(bot *fakeBot, assistant *fakeAssistant, artifacts ArtifactStore) *ConversationHandler {
	return NewConversationHandler(bot, newSender(bot), assistant, artifacts, keyboard.NewBuilder(), zap.NewNop())
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "tg-42", SessionID(42))
	assert.Equal(t, "tg--100123", SessionID(-100123))
}

func TestConversationDeliversReplyAndFiles(t *testing.T) {
	bot := &fakeBot{}
	assistant := &fakeAssistant{resp: entity.TurnResponse{
		Intent: entity.IntentDocumentRequest,
		Message: entity.Message{
			Content: "# BRD",
			Attachments: []entity.Attachment{
				{Format: entity.FormatDOCX, Name: "brd.docx", Locator: repository.Locator("a-1")},
				{Format: entity.FormatPDF, Name: "brd.pdf", Locator: repository.Locator("gone")},
			},
		},
		Publication: &entity.PublishResult{Published: true, URL: "https://wiki/p/1"},
	}}
	artifacts := fakeArtifacts{"a-1": {ID: "a-1", Name: "brd.docx", Data: []byte("docx")}}

	err := newConversation(bot, assistant, artifacts).Handle(context.Background(), &Message{ChatID: 7, Text: "Создай BRD"})
	require.NoError(t, err)

	assert.Equal(t, []string{"tg-7"}, assistant.opened)
	assert.Equal(t, []string{"Создай BRD"}, assistant.turns)
	assert.GreaterOrEqual(t, bot.actions, 1)

	require.Len(t, bot.texts, 4)
	assert.Equal(t, "# BRD", bot.texts[0])
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, bot.markups[0])
	assert.Equal(t, render.MsgAttachments, bot.texts[1])
	assert.Contains(t, bot.texts[2], "brd.pdf")
	assert.Equal(t, "✅ Страница опубликована: https://wiki/p/1", bot.texts[3])

	require.Len(t, bot.docs, 1)
	assert.Equal(t, "brd.docx", bot.docs[0].File.(tgbotapi.FileBytes).Name)
}

func TestConversationSplitsLongReplies(t *testing.T) {
	bot := &fakeBot{}
	long := strings.Repeat("строка текста документа\n", 400)
	assistant := &fakeAssistant{resp: entity.TurnResponse{Message: entity.Message{Content: long}}}

	require.NoError(t, newConversation(bot, assistant, fakeArtifacts{}).Handle(context.Background(), &Message{ChatID: 1, Text: "BRD"}))

	require.Greater(t, len(bot.texts), 1)
	for i, m := range bot.markups {
		if i == len(bot.markups)-1 {
			assert.NotNil(t, m)
		} else {
			assert.Nil(t, m)
		}
	}
}

func TestConversationPropagatesErrors(t *testing.T) {
	bot := &fakeBot{}
	assistant := &fakeAssistant{err: entity.ErrEmptyTurn}

	err := newConversation(bot, assistant, fakeArtifacts{}).Handle(context.Background(), &Message{ChatID: 1, Text: " "})
	assert.ErrorIs(t, err, entity.ErrEmptyTurn)
	assert.Empty(t, bot.texts)
}

func TestSenderRetries(t *testing.T) {
	bot := &fakeBot{failures: 2}
	require.NoError(t, newSender(bot).Send(context.Background(), 1, "привет", nil))
	assert.Equal(t, []string{"привет"}, bot.texts)

	bot = &fakeBot{failures: 5}
	assert.Error(t, newSender(bot).Send(context.Background(), 1, "привет", nil))
}

func TestHandleErrorTellsUser(t *testing.T) {
	bot := &fakeBot{}
	newSender(bot).HandleError(context.Background(), 3, entity.ErrSessionNotFound)
	assert.Equal(t, []string{render.ErrSessionNotFound}, bot.texts)

	assert.Equal(t, SeverityWarning, classifyHandlerError(entity.ErrSessionNotFound).Severity)
	assert.Equal(t, SeverityError, classifyHandlerError(errors.New("boom")).Severity)
}

func TestCommands(t *testing.T) {
	bot := &fakeBot{}
	assistant := &fakeAssistant{kb: entity.KnowledgeBase{Goals: []string{"снизить ошибки"}}}
	h := NewCommandHandler(newSender(bot), assistant, keyboard.NewBuilder())
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 5, Command: keyboard.CommandStart}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 5, Command: keyboard.CommandReset}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 5, Command: keyboard.CommandKnowledge}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 5, Command: "nope"}))

	assert.Equal(t, []string{"tg-5"}, assistant.reset)
	require.Len(t, bot.texts, 4)
	assert.Equal(t, render.MsgWelcome, bot.texts[0])
	assert.Equal(t, render.MsgReset, bot.texts[1])
	assert.Contains(t, bot.texts[2], "снизить ошибки")
	assert.Equal(t, render.MsgUnknownCommand, bot.texts[3])
}

type recordingHandler struct {
	msgs []*Message
}

func (r *recordingHandler) Handle(_ context.Context, msg *Message) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestCallbacks(t *testing.T) {
	conversation, commands := &recordingHandler{}, &recordingHandler{}
	h := NewCallbackHandler(conversation, commands)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 9, CallbackData: keyboard.EncodeCallback(keyboard.ActionTurn, keyboard.TurnProceed)}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 9, CallbackData: keyboard.EncodeCallback(keyboard.ActionCommand, keyboard.CommandReset)}))
	assert.Error(t, h.Handle(ctx, &Message{ChatID: 9, CallbackData: "turn:dance"}))
	assert.Error(t, h.Handle(ctx, &Message{ChatID: 9, CallbackData: "garbage"}))

	require.Len(t, conversation.msgs, 1)
	assert.Equal(t, "Сформируй документ по имеющимся данным", conversation.msgs[0].Text)
	require.Len(t, commands.msgs, 1)
	assert.Equal(t, keyboard.CommandReset, commands.msgs[0].Command)
}

func TestTypingNotifierStops(t *testing.T) {
	bot := &fakeBot{}
	n := NewTypingNotifier(bot, 1, time.Millisecond, zap.NewNop())
	n.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	n.Stop()
	n.Stop()

	bot.mu.Lock()
	defer bot.mu.Unlock()
	assert.GreaterOrEqual(t, bot.actions, 1)
}
