package confluence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/integration/common"
	pkghttp "github.com/futig/ba-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

const (
	contentEndpoint = "/rest/api/content"

	notConfiguredMessage = "Confluence окружение не настроено"
	defaultTitlePrefix   = "Бизнес-требования — "
)

var codeBlockRe = regexp.MustCompile(`(?s)<pre><code class="language-(mermaid|plantuml|puml|uml)">(.*?)</code></pre>`)

var macroNames = map[string]string{
	"mermaid":  "mermaid",
	"plantuml": "plantuml",
	"puml":     "plantuml",
	"uml":      "plantuml",
}

type storageBody struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type ancestor struct {
	ID string `json:"id"`
}

type createPageRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage storageBody `json:"storage"`
	} `json:"body"`
	Ancestors []ancestor `json:"ancestors,omitempty"`
}

type createPageResponse struct {
	ID    string `json:"id"`
	Links struct {
		Base  string `json:"base"`
		WebUI string `json:"webui"`
		Self  string `json:"self"`
	} `json:"_links"`
}

// Publisher creates Confluence pages from finalized documents.
type Publisher struct {
	config    config.ConfluenceConfig
	connector *pkghttp.Connector
	md        goldmark.Markdown
	now       func() time.Time
}

func NewPublisher(cfg config.ConfluenceConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithBasicAuth(cfg.Username, cfg.APIToken)),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithXHTML()),
		),
		now: time.Now,
	}
}

// Publish never fails the caller: problems are reported in the result and
// the returned error is kept for logging and errors.Is checks.
func (p *Publisher) Publish(ctx context.Context, markdown string, page entity.PageConfig) (entity.PublishResult, error) {
	space := page.SpaceKey
	if space == "" {
		space = p.config.SpaceKey
	}
	if p.config.Url == "" || p.config.Username == "" || p.config.APIToken == "" || space == "" {
		return entity.PublishResult{Error: notConfiguredMessage}, entity.ErrPublishNotConfigured
	}

	storage, err := p.StorageFormat(markdown)
	if err != nil {
		return entity.PublishResult{Error: err.Error()}, err
	}

	req := createPageRequest{Type: "page", Title: page.Title}
	if req.Title == "" {
		req.Title = defaultTitlePrefix + p.now().UTC().Format(time.RFC3339)
	}
	req.Space.Key = space
	req.Body.Storage = storageBody{Value: storage, Representation: "storage"}

	parent := page.ParentID
	if parent == "" {
		parent = p.config.ParentID
	}
	if parent != "" {
		req.Ancestors = []ancestor{{ID: parent}}
	}

	ctxzap.Info(ctx, "publishing document",
		zap.String("space", space),
		zap.String("title", req.Title),
		zap.Int("storage_size", len(storage)),
	)

	var resp createPageResponse
	err = retry.Do(
		func() error {
			return p.connector.DoRequest(ctx, http.MethodPost, contentEndpoint, req, &resp)
		},
		append(p.config.Retry.ToRetryOptions(ctx), retry.RetryIf(pkghttp.IsRetryable))...,
	)
	if err != nil {
		ctxzap.Warn(ctx, "publishing failed", zap.Error(err))
		return entity.PublishResult{Error: publishError(err)}, fmt.Errorf("create page: %w", err)
	}

	url := resp.Links.Base + resp.Links.WebUI
	if resp.Links.WebUI == "" {
		url = resp.Links.Self
	}
	ctxzap.Info(ctx, "document published", zap.String("page_id", resp.ID), zap.String("url", url))

	return entity.PublishResult{Published: true, URL: url, PageID: resp.ID}, nil
}

// StorageFormat converts markdown to Confluence storage XHTML. Mermaid and
// PlantUML code blocks become the matching macros.
func (p *Publisher) StorageFormat(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	return codeBlockRe.ReplaceAllStringFunc(buf.String(), func(block string) string {
		m := codeBlockRe.FindStringSubmatch(block)
		return macro(macroNames[m[1]], html.UnescapeString(m[2]))
	}), nil
}

func macro(name, body string) string {
	body = strings.TrimRight(body, "\n")
	// CDATA cannot contain its own terminator
	body = strings.ReplaceAll(body, "]]>", "]]]]><![CDATA[>")
	return fmt.Sprintf(`<ac:structured-macro ac:name="%s"><ac:plain-text-body><![CDATA[%s]]></ac:plain-text-body></ac:structured-macro>`, name, body)
}

func publishError(err error) string {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Confluence error %d %s", httpErr.StatusCode, httpErr.Message)
	}
	return err.Error()
}
