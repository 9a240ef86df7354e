package diagram

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func unreachable() config.DiagramConfig {
	return config.DiagramConfig{
		Enabled:    true,
		ControlURL: "ws://127.0.0.1:1/devtools/browser/none",
		MermaidURL: "https://example.invalid/mermaid.js",
		Timeout:    2 * time.Second,
	}
}

func TestRasterizeUnreachableBrowser(t *testing.T) {
	r := NewRenderer(unreachable(), zap.NewNop())
	defer r.Close()

	_, err := r.Rasterize(context.Background(), "flowchart LR\n  A --> B")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrRenderingFailure)

	_, err = r.PrintPDF(context.Background(), []byte("<html></html>"))
	assert.ErrorIs(t, err, entity.ErrRenderingFailure)
}

func TestClosedRenderer(t *testing.T) {
	r := NewRenderer(unreachable(), zap.NewNop())
	require.NoError(t, r.Close())

	_, err := r.Rasterize(context.Background(), "graph LR\n  A --> B")
	assert.ErrorIs(t, err, errClosed)
}

func TestShellEmbedsMermaidURL(t *testing.T) {
	r := NewRenderer(unreachable(), zap.NewNop())
	assert.Contains(t, r.shell(), `<script src="https://example.invalid/mermaid.js"></script>`)
}

func TestPNGImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 30, 12))))

	img, err := pngImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 30, img.Width)
	assert.Equal(t, 12, img.Height)

	_, err = pngImage([]byte("jpeg?"))
	assert.ErrorIs(t, err, entity.ErrRenderingFailure)
}
