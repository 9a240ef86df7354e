package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/integration/common"
	pkghttp "github.com/futig/ba-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Sampling per draft mode. Documents need deterministic structure, chat may vary.
var samplings = map[entity.DraftMode]sampling{
	entity.DraftModeDocument: {Temperature: 0.1, MaxTokens: 3000},
	entity.DraftModeChat:     {Temperature: 0.7, MaxTokens: 2000},
}

type sampling struct {
	Temperature float64
	MaxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Connector talks to an OpenAI compatible chat completions endpoint.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Invoke sends the conversation and returns the assistant text. Unreachable
// service, throttling and server errors surface as entity.ErrServiceUnavailable.
func (c *Connector) Invoke(ctx context.Context, req *entity.DraftRequest) (string, error) {
	s, ok := samplings[req.Mode]
	if !ok {
		s = samplings[entity.DraftModeDocument]
	}

	body := chatRequest{
		Model:       c.config.Model,
		Messages:    buildMessages(req),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}

	ctxzap.Info(ctx, "invoking drafting service",
		zap.String("mode", string(req.Mode)),
		zap.String("doc_type", string(req.DocType)),
		zap.Int("messages", len(body.Messages)),
	)

	var resp chatResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, body, &resp)
		},
		append(c.config.Retry.ToRetryOptions(ctx),
			retry.RetryIf(pkghttp.IsRetryable),
			retry.OnRetry(func(n uint, err error) {
				ctxzap.Warn(ctx, "drafting service call failed, retrying",
					zap.Uint("attempt", n+1),
					zap.Error(err),
				)
			}),
		)...,
	)
	if err != nil {
		if pkghttp.IsUnavailable(err) || errors.Is(err, context.DeadlineExceeded) {
			return "", errors.Join(entity.ErrServiceUnavailable, err)
		}
		return "", fmt.Errorf("invoke drafting service: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", entity.ErrServiceUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	ctxzap.Info(ctx, "drafting service responded",
		zap.Int("length", len(text)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)
	return text, nil
}

func buildMessages(req *entity.DraftRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	messages = append(messages, chatMessage{
		Role:    string(entity.RoleSystem),
		Content: SystemPrompt(req.Mode, req.DocType),
	})
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" || m.Role == entity.RoleSystem {
			continue
		}
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return messages
}
