package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	// A4 in inches with 2 cm margins
	paperWidth  = 8.27
	paperHeight = 11.69
	paperMargin = 0.79

	mermaidWait = 5 * time.Second
)

var errClosed = errors.New("diagram renderer is closed")

const renderScript = `(src) => {
	mermaid.initialize({ startOnLoad: false, securityLevel: "strict", theme: "default" });
	return mermaid.render("diagram", src).then((r) => {
		document.body.innerHTML = r.svg;
		return r.svg;
	});
}`

// Renderer drives a headless Chromium: mermaid source is rendered in-page and
// screenshotted, HTML pages are printed to PDF. The browser starts on first use.
type Renderer struct {
	cfg      config.DiagramConfig
	logger   *zap.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

func NewRenderer(cfg config.DiagramConfig, logger *zap.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Renderer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errClosed
	}
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.logger.Warn("stale browser connection, reconnecting")
		_ = r.browser.Close()
		r.browser = nil
	}

	controlURL := r.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Leakless(false)
		if r.cfg.BrowserBin != "" {
			l = l.Bin(r.cfg.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		r.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		r.killLauncher()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	r.browser = browser
	r.logger.Info("headless browser connected", zap.String("control_url", controlURL))
	return browser, nil
}

func (r *Renderer) page(ctx context.Context, html string) (*rod.Page, error) {
	browser, err := r.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	b := browser.Context(ctx)
	if r.cfg.Timeout > 0 {
		b = b.Timeout(r.cfg.Timeout)
	}
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait page load: %w", err)
	}
	return page, nil
}

func (r *Renderer) render(page *rod.Page, source string) (string, error) {
	res, err := page.Eval(renderScript, source)
	if err != nil {
		return "", errors.Join(entity.ErrRenderingFailure, fmt.Errorf("render mermaid: %w", err))
	}
	svg := res.Value.Str()
	if !strings.Contains(svg, "<svg") {
		return "", fmt.Errorf("%w: mermaid returned no svg", entity.ErrRenderingFailure)
	}
	return svg, nil
}

// Render returns the SVG markup mermaid produces for the source.
func (r *Renderer) Render(ctx context.Context, source string) (string, error) {
	page, err := r.page(ctx, r.shell())
	if err != nil {
		return "", errors.Join(entity.ErrRenderingFailure, err)
	}
	defer page.Close()

	return r.render(page, document.Normalize(source))
}

// Rasterize renders mermaid source and screenshots the resulting SVG as PNG.
func (r *Renderer) Rasterize(ctx context.Context, source string) (entity.RasterImage, error) {
	start := time.Now()

	page, err := r.page(ctx, r.shell())
	if err != nil {
		return entity.RasterImage{}, errors.Join(entity.ErrRenderingFailure, err)
	}
	defer page.Close()

	if _, err := r.render(page, document.Normalize(source)); err != nil {
		return entity.RasterImage{}, err
	}

	el, err := page.Element("svg")
	if err != nil {
		return entity.RasterImage{}, errors.Join(entity.ErrRenderingFailure, err)
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return entity.RasterImage{}, errors.Join(entity.ErrRenderingFailure, fmt.Errorf("screenshot: %w", err))
	}

	img, err := pngImage(data)
	if err != nil {
		return entity.RasterImage{}, err
	}

	ctxzap.Debug(ctx, "diagram rasterized",
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Duration("duration", time.Since(start)),
	)
	return img, nil
}

// PrintPDF prints a complete HTML page to an A4 PDF.
func (r *Renderer) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	page, err := r.page(ctx, string(html))
	if err != nil {
		return nil, errors.Join(entity.ErrRenderingFailure, err)
	}
	defer page.Close()

	if bytes.Contains(html, []byte(`class="mermaid"`)) {
		// client side diagrams render after load
		if _, err := page.Timeout(mermaidWait).Element(".mermaid svg"); err != nil {
			ctxzap.Warn(ctx, "mermaid did not render before printing", zap.Error(err))
		}
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      ptr(paperWidth),
		PaperHeight:     ptr(paperHeight),
		MarginTop:       ptr(paperMargin),
		MarginBottom:    ptr(paperMargin),
		MarginLeft:      ptr(paperMargin),
		MarginRight:     ptr(paperMargin),
	})
	if err != nil {
		return nil, errors.Join(entity.ErrRenderingFailure, fmt.Errorf("print pdf: %w", err))
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, errors.Join(entity.ErrRenderingFailure, fmt.Errorf("read pdf stream: %w", err))
	}
	return data, nil
}

// Close shuts the browser down. The renderer cannot be used afterwards.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

func (r *Renderer) killLauncher() {
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
}

func (r *Renderer) shell() string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="utf-8"><script src="%s"></script></head>`+
		`<body style="margin:0;background:#ffffff;display:inline-block"></body></html>`, r.cfg.MermaidURL)
}

func pngImage(data []byte) (entity.RasterImage, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.RasterImage{}, errors.Join(entity.ErrRenderingFailure, fmt.Errorf("decode screenshot: %w", err))
	}
	return entity.RasterImage{Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

func ptr(v float64) *float64 {
	return &v
}
