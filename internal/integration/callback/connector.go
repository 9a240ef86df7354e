package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/integration/common"
	pkghttp "github.com/futig/ba-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
	now       func() time.Time
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SendTurnResult posts the outcome of an asynchronous turn
func (c *Connector) SendTurnResult(ctx context.Context, callbackURL, requestID, sessionID string, data *entity.TurnResponse) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeTurnResult,
		SessionID: sessionID,
		Data:      data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send turn result callback", zap.Error(err))
	}
}

// SendError sends an error event to the specified callback URL
func (c *Connector) SendError(ctx context.Context, callbackURL, requestID, sessionID, message string, details map[string]any) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeError,
		SessionID: sessionID,
		Data: &entity.CallbackErrorData{
			Error: entity.CallbackErrorDetails{
				Message: message,
				Details: details,
			},
		},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send error callback", zap.Error(err))
	}
}

func (c *Connector) Send(ctx context.Context, callbackURL, requestID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = c.now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("request_id", requestID),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Request-ID", requestID),
		pkghttp.WithURL(callbackURL),
	}

	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, opts...)
		},
		append(c.config.Retry.ToRetryOptions(ctx),
			retry.RetryIf(pkghttp.IsRetryable),
			retry.OnRetry(func(n uint, err error) {
				ctxzap.Warn(ctx, "callback delivery failed, retrying",
					zap.Uint("attempt", n+1),
					zap.Error(err),
				)
			}),
		)...,
	)
	if err != nil {
		return fmt.Errorf("send callback, event_type: %s, url: %s: %w", event.Event, callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("request_id", requestID),
	)
	return nil
}
