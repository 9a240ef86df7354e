package formatter

import (
	"context"
	"fmt"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
)

type Formatter interface {
	Format(ctx context.Context, doc *document.Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Rasterizer turns diagram source into a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, source string) (entity.RasterImage, error)
}

// HTMLPrinter prints a complete HTML page to PDF.
type HTMLPrinter interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

type Factory struct {
	rasterizer Rasterizer
	printer    HTMLPrinter
}

// NewFactory accepts nil collaborators: without a rasterizer diagrams degrade
// to text, without a printer PDF is drawn by gofpdf.
func NewFactory(rasterizer Rasterizer, printer HTMLPrinter) *Factory {
	return &Factory{
		rasterizer: rasterizer,
		printer:    printer,
	}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatHTML:
		return NewHTMLFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(f.rasterizer), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.rasterizer, f.printer), nil
	case entity.FormatXLSX:
		return NewXLSXFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}
