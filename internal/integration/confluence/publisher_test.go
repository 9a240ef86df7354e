package confluence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleDoc = "# Платежи\n\n| Вход | Выход |\n|---|---|\n| Заявка | Платеж |\n\n" +
	"```mermaid\nflowchart LR\n  a[Заявка] --> b[\"Платеж > 0\"]\n```\n\n" +
	"```puml\n@startuml\nA -> B\n@enduml\n```\n\n" +
	"```go\nfmt.Println(1)\n```\n"

func testConfig(url string) config.ConfluenceConfig {
	return config.ConfluenceConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: url, RequestTimeout: 2 * time.Second},
		Username:         "ba@example.com",
		APIToken:         "secret",
		SpaceKey:         "BA",
		ParentID:         "100",
		Retry:            pkgRetry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestStorageFormat(t *testing.T) {
	out, err := NewPublisher(testConfig(""), zap.NewNop()).StorageFormat(sampleDoc)
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `<ac:structured-macro ac:name="mermaid"><ac:plain-text-body><![CDATA[flowchart LR`)
	assert.Contains(t, out, `b["Платеж > 0"]]]></ac:plain-text-body>`)
	assert.Contains(t, out, `<ac:structured-macro ac:name="plantuml">`)
	assert.Contains(t, out, `<code class="language-go">`)
}

func TestMacroEscapesCDATATerminator(t *testing.T) {
	out := macro("mermaid", "a]]>b\n")
	assert.Contains(t, out, "<![CDATA[a]]]]><![CDATA[>b]]>")
}

func TestPublish(t *testing.T) {
	var got createPageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contentEndpoint, r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ba@example.com", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"42","_links":{"base":"https://wiki.example.com","webui":"/pages/42"}}`))
	}))
	defer srv.Close()

	p := NewPublisher(testConfig(srv.URL), zap.NewNop())
	p.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	res, err := p.Publish(context.Background(), sampleDoc, entity.PageConfig{SpaceKey: "OPS"})
	require.NoError(t, err)

	assert.Equal(t, entity.PublishResult{Published: true, URL: "https://wiki.example.com/pages/42", PageID: "42"}, res)
	assert.Equal(t, "page", got.Type)
	assert.Equal(t, "OPS", got.Space.Key)
	assert.Equal(t, "Бизнес-требования — 2026-03-01T10:00:00Z", got.Title)
	assert.Equal(t, "storage", got.Body.Storage.Representation)
	assert.Equal(t, []ancestor{{ID: "100"}}, got.Ancestors)
}

func TestPublishSelfLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"7","_links":{"self":"https://wiki.example.com/rest/api/content/7"}}`))
	}))
	defer srv.Close()

	res, err := NewPublisher(testConfig(srv.URL), zap.NewNop()).Publish(context.Background(), "# T", entity.PageConfig{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com/rest/api/content/7", res.URL)
}

func TestPublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "space does not exist", http.StatusBadRequest)
	}))
	defer srv.Close()

	res, err := NewPublisher(testConfig(srv.URL), zap.NewNop()).Publish(context.Background(), "# T", entity.PageConfig{})
	require.Error(t, err)
	assert.False(t, res.Published)
	assert.Contains(t, res.Error, "Confluence error 400 space does not exist")
}

func TestPublishNotConfigured(t *testing.T) {
	cfg := testConfig("https://wiki.example.com")
	cfg.APIToken = ""

	res, err := NewPublisher(cfg, zap.NewNop()).Publish(context.Background(), "# T", entity.PageConfig{})
	assert.ErrorIs(t, err, entity.ErrPublishNotConfigured)
	assert.Equal(t, entity.PublishResult{Error: "Confluence окружение не настроено"}, res)
}
