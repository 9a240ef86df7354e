package formatter

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"image/png"
	"math"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	pdfMargin         = 20.0
	pdfPageWidth      = 210.0
	pdfContentWidth   = pdfPageWidth - 2*pdfMargin
	pdfMinColumnWidth = 20
	pdfLineHeight     = 6.0
	pdfCellPadding    = 1.5
)

var (
	//go:embed ttf/DejaVuSansCondensed.ttf
	pdfFontRegular []byte
	//go:embed ttf/DejaVuSansCondensed-Bold.ttf
	pdfFontBold []byte
)

// PDFFormatter prints the HTML form through a headless browser when one is
// available and draws the document with gofpdf otherwise.
type PDFFormatter struct {
	rasterizer Rasterizer
	printer    HTMLPrinter
	html       *HTMLFormatter
}

func NewPDFFormatter(rasterizer Rasterizer, printer HTMLPrinter) *PDFFormatter {
	return &PDFFormatter{
		rasterizer: rasterizer,
		printer:    printer,
		html:       NewHTMLFormatter(),
	}
}

func (pf *PDFFormatter) Format(ctx context.Context, doc *document.Document) ([]byte, error) {
	images := rasterizeDiagrams(ctx, pf.rasterizer, doc)

	if pf.printer != nil {
		data, err := pf.printHTML(ctx, doc, images)
		if err == nil {
			return data, nil
		}
		ctxzap.Warn(ctx, "browser pdf printing failed, drawing with gofpdf", zap.Error(err))
	}

	return pf.draw(doc, images)
}

func (pf *PDFFormatter) printHTML(ctx context.Context, doc *document.Document, images map[int]entity.RasterImage) ([]byte, error) {
	page, err := pf.html.render(doc, images)
	if err != nil {
		return nil, err
	}
	data, err := pf.printer.PrintPDF(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return data, nil
}

type pdfWriter struct {
	pdf  *gofpdf.Fpdf
	font string
}

func (pf *PDFFormatter) draw(doc *document.Document, images map[int]entity.RasterImage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	pdf.AddUTF8FontFromBytes(pdfFontName, "", pdfFontRegular)
	pdf.AddUTF8FontFromBytes(pdfFontName, "B", pdfFontBold)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: load pdf font: %v", entity.ErrRenderingFailure, err)
	}

	w := &pdfWriter{pdf: pdf, font: pdfFontName}
	pdf.AddPage()

	for i, b := range doc.Blocks {
		switch v := b.(type) {
		case document.Heading:
			w.heading(v)
		case document.Paragraph:
			if v.Preformatted {
				w.preformatted(v.Text)
				continue
			}
			w.text(document.PlainText(v.Text), "")
		case document.List:
			for n, it := range v.Items {
				marker := "•"
				if v.Ordered {
					marker = fmt.Sprintf("%d.", n+1)
				}
				w.listItem(marker, document.PlainText(it))
			}
			pdf.Ln(2)
		case document.Table:
			w.table(v)
		case document.Diagram:
			if title, slices, ok := document.ParsePie(v.Source); ok {
				if title != "" {
					w.text(title, "B")
				}
				w.table(document.PieTable(slices))
				continue
			}
			img, ok := images[i]
			if !ok || w.image(i, img) != nil {
				w.preformatted(v.Source)
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("draw pdf: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) heading(h document.Heading) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13}
	size, ok := sizes[h.Level]
	if !ok {
		size = 12
	}
	w.pdf.Ln(2)
	w.pdf.SetFont(w.font, "B", size)
	w.pdf.MultiCell(0, size*0.5, document.PlainText(h.Text), "", "L", false)
	w.pdf.Ln(1)
}

func (w *pdfWriter) text(s, style string) {
	w.pdf.SetFont(w.font, style, 11)
	w.pdf.MultiCell(0, pdfLineHeight, s, "", "L", false)
	w.pdf.Ln(1)
}

func (w *pdfWriter) listItem(marker, s string) {
	w.pdf.SetFont(w.font, "", 11)
	w.pdf.SetX(pdfMargin + 4)
	w.pdf.CellFormat(7, pdfLineHeight, marker, "", 0, "L", false, 0, "")
	w.pdf.MultiCell(pdfContentWidth-11, pdfLineHeight, s, "", "L", false)
}

func (w *pdfWriter) preformatted(s string) {
	w.pdf.SetFont(w.font, "", 9)
	w.pdf.SetFillColor(246, 248, 250)
	w.pdf.MultiCell(0, 4.5, s, "", "L", true)
	w.pdf.Ln(2)
}

func (w *pdfWriter) table(t document.Table) {
	widths := ColumnWidths(t.Rows, int(pdfContentWidth), pdfMinColumnWidth)
	if len(widths) == 0 {
		return
	}

	for ri, row := range t.Rows {
		style := ""
		if ri == 0 {
			style = "B"
		}
		w.pdf.SetFont(w.font, style, 10)

		cells := make([]string, len(widths))
		lines := 1
		for ci := range widths {
			if ci < len(row) {
				cells[ci] = document.PlainText(row[ci])
			}
			lines = max(lines, w.lineCount(cells[ci], float64(widths[ci])-2*pdfCellPadding))
		}
		height := float64(lines)*5 + 2*pdfCellPadding

		_, pageHeight := w.pdf.GetPageSize()
		if w.pdf.GetY()+height > pageHeight-pdfMargin {
			w.pdf.AddPage()
		}

		x, y := w.pdf.GetXY()
		for ci, width := range widths {
			cw := float64(width)
			if ri == 0 {
				w.pdf.SetFillColor(232, 238, 247)
			}
			w.pdf.Rect(x, y, cw, height, tableRectStyle(ri))
			w.pdf.SetXY(x+pdfCellPadding, y+pdfCellPadding)
			w.pdf.MultiCell(cw-2*pdfCellPadding, 5, cells[ci], "", "L", false)
			x += cw
		}
		w.pdf.SetXY(pdfMargin, y+height)
	}
	w.pdf.Ln(3)
}

// lineCount estimates how many lines MultiCell wraps s into at the given width.
// gofpdf's SplitLines measures bytes and miscounts multi-byte runes.
func (w *pdfWriter) lineCount(s string, width float64) int {
	if width <= 0 {
		return 1
	}
	total := 0
	for _, para := range strings.Split(s, "\n") {
		lines, lineWidth := 1, 0.0
		space := w.pdf.GetStringWidth(" ")
		for _, word := range strings.Fields(para) {
			ww := w.pdf.GetStringWidth(word)
			if lineWidth > 0 && lineWidth+space+ww > width {
				lines++
				lineWidth = 0
			}
			if ww > width {
				lines += int(ww / width)
				ww = math.Mod(ww, width)
			}
			if lineWidth > 0 {
				lineWidth += space
			}
			lineWidth += ww
		}
		total += lines
	}
	return total
}

func tableRectStyle(row int) string {
	if row == 0 {
		return "FD"
	}
	return "D"
}

func (w *pdfWriter) image(block int, img entity.RasterImage) error {
	if _, err := png.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrRenderingFailure, err)
	}

	name := fmt.Sprintf("diagram-%d", block)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if info == nil || w.pdf.Err() {
		err := w.pdf.Error()
		w.pdf.ClearError()
		return fmt.Errorf("%w: %v", entity.ErrRenderingFailure, err)
	}

	// 96 dpi bitmap to millimetres
	width, height := fitWidth(float64(img.Width)*25.4/96, float64(img.Height)*25.4/96, pdfContentWidth)
	_, pageHeight := w.pdf.GetPageSize()
	if w.pdf.GetY()+height > pageHeight-pdfMargin {
		w.pdf.AddPage()
	}
	x := pdfMargin + (pdfContentWidth-width)/2
	w.pdf.ImageOptions(name, x, w.pdf.GetY(), width, height, true, opts, 0, "")
	w.pdf.Ln(3)
	return nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
