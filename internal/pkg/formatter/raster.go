package formatter

import (
	"context"
	"errors"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errNoRasterizer = errors.New("diagram rasterizer is not configured")

// rasterizeDiagrams renders every diagram block of doc, keyed by block index.
// Failed diagrams are absent from the result; callers fall back to text.
func rasterizeDiagrams(ctx context.Context, r Rasterizer, doc *document.Document) map[int]entity.RasterImage {
	images := make(map[int]entity.RasterImage)
	for i, b := range doc.Blocks {
		d, ok := b.(document.Diagram)
		if !ok {
			continue
		}
		if _, _, isPie := document.ParsePie(d.Source); isPie {
			continue
		}

		img, err := rasterize(ctx, r, d.Source)
		if err != nil {
			ctxzap.Warn(ctx, "diagram rasterization failed",
				zap.Int("block", i),
				zap.String("kind", document.Kind(d.Source)),
				zap.Error(err),
			)
			continue
		}
		images[i] = img
	}
	return images
}

func rasterize(ctx context.Context, r Rasterizer, source string) (entity.RasterImage, error) {
	if r == nil {
		return entity.RasterImage{}, errNoRasterizer
	}
	img, err := r.Rasterize(ctx, document.Normalize(source))
	if err != nil {
		return entity.RasterImage{}, errors.Join(entity.ErrRenderingFailure, err)
	}
	if len(img.Data) == 0 || img.Width <= 0 || img.Height <= 0 {
		return entity.RasterImage{}, entity.ErrRenderingFailure
	}
	return img, nil
}

// fitWidth scales w×h down to maxWidth keeping the aspect ratio.
func fitWidth(w, h, maxWidth float64) (float64, float64) {
	if w <= maxWidth || w <= 0 {
		return w, h
	}
	return maxWidth, h * maxWidth / w
}
