package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/futig/ba-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	inactiveUserTTL = time.Hour
	cleanupInterval = 10 * time.Minute
	warningInterval = 30 * time.Second
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
}

// RateLimiterMiddleware implements token bucket rate limiting per user.
// Buckets of users idle for an hour are dropped.
type RateLimiterMiddleware struct {
	limits     *cache.Cache
	mu         sync.Mutex
	maxTokens  float64
	refillRate float64 // tokens per second
	logger     *zap.Logger
	bot        sender
	now        func() time.Time
}

// NewRateLimiterMiddleware allows burst requests at once and requestsPerMinute on average
func NewRateLimiterMiddleware(requestsPerMinute, burst int, logger *zap.Logger, bot sender) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits:     cache.New(inactiveUserTTL, cleanupInterval),
		maxTokens:  float64(burst),
		refillRate: float64(requestsPerMinute) / 60.0,
		logger:     logger,
		bot:        bot,
		now:        time.Now,
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID := chatOf(update)
	if userID == 0 {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) bucket(userID int64) *userLimit {
	key := userKey(userID)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limits.Get(key); ok {
		rl.limits.SetDefault(key, v)
		return v.(*userLimit)
	}
	limit := &userLimit{tokens: rl.maxTokens, lastRefill: rl.now()}
	rl.limits.SetDefault(key, limit)
	return limit
}

// allowRequest checks if request is allowed under rate limit
func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	limit := rl.bucket(userID)

	limit.mu.Lock()
	defer limit.mu.Unlock()

	now := rl.now()
	limit.tokens += now.Sub(limit.lastRefill).Seconds() * rl.refillRate
	if limit.tokens > rl.maxTokens {
		limit.tokens = rl.maxTokens
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens--
		limit.warningsSent = 0
		return true
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		rl.sendRateLimitWarning(chatID, limit.warningsSent)
	}
	return false
}

func (rl *RateLimiterMiddleware) sendRateLimitWarning(chatID int64, warningCount int) {
	text := render.ErrRateLimited
	if warningCount >= 3 {
		text = render.ErrRateLimitedHard
	}

	if _, err := rl.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func userKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
