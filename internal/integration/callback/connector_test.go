package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector() *Connector {
	c := NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: 5 * time.Second},
		Retry:            pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zap.NewNop())
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("MSK", 3*3600)) }
	return c
}

func TestSendTurnResult(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hooks/ba", r.URL.Path)
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	newTestConnector().SendTurnResult(context.Background(), srv.URL+"/hooks/ba", "req-1", "s-1", &entity.TurnResponse{
		Intent:  entity.IntentChatQuestion,
		Message: entity.Message{Role: entity.RoleAssistant, Content: "Расскажите о ролях."},
	})

	require.NotNil(t, got)
	assert.Equal(t, "turnResult", got["event"])
	assert.Equal(t, "s-1", got["session_id"])
	assert.Equal(t, "2026-03-01T06:30:00Z", got["timestamp"])
	data := got["data"].(map[string]any)
	assert.Equal(t, string(entity.IntentChatQuestion), data["intent"])
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestConnector().Send(context.Background(), srv.URL, "req-2", &entity.CallbackEvent{Event: entity.CallbackEventTypeError})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestConnector().Send(context.Background(), srv.URL, "req-3", &entity.CallbackEvent{Event: entity.CallbackEventTypeError})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
