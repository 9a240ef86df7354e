package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TypingInterval is below the 5 second lifetime of a chat action.
const TypingInterval = 4 * time.Second

// TypingNotifier sends periodic "typing" actions while a turn is processed
type TypingNotifier struct {
	bot      Sender
	chatID   int64
	interval time.Duration
	logger   *zap.Logger

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewTypingNotifier creates a new typing indicator
func NewTypingNotifier(bot Sender, chatID int64, interval time.Duration, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		bot:      bot,
		chatID:   chatID,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start sends the first action immediately and repeats it until Stop or ctx is done.
func (t *TypingNotifier) Start(ctx context.Context) {
	t.send()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send()
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops sending typing indicators and waits for the loop to exit.
func (t *TypingNotifier) Stop() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}

func (t *TypingNotifier) send() {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
